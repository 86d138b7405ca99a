package domain

import "fmt"

// Status is the outcome of ticking a node.
//
// Idle is the only legal state before the first tick and after a halt/reset.
// Running means the node is suspended mid-execution and must be re-ticked,
// not restarted, on the next cycle. Success and Failure are terminal for the
// current cycle. Skipped marks a node bypassed by a precondition guard
// without being evaluated.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusSuccess
	StatusFailure
	StatusSkipped
)

// IsTerminal reports whether the status concludes the current cycle.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// IsActive reports whether the node is suspended and eligible for re-tick.
func (s Status) IsActive() bool {
	return s == StatusRunning
}

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler for trace and wire formats.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus converts a status name back into a Status.
func ParseStatus(name string) (Status, error) {
	switch name {
	case "idle":
		return StatusIdle, nil
	case "running":
		return StatusRunning, nil
	case "success":
		return StatusSuccess, nil
	case "failure":
		return StatusFailure, nil
	case "skipped":
		return StatusSkipped, nil
	default:
		return StatusIdle, fmt.Errorf("unknown status: %q", name)
	}
}

// Category classifies a node by its structural role in the tree.
type Category int

const (
	CategoryAction Category = iota
	CategoryCondition
	CategoryControl
	CategoryDecorator
	CategorySubTree
)

func (c Category) String() string {
	switch c {
	case CategoryAction:
		return "action"
	case CategoryCondition:
		return "condition"
	case CategoryControl:
		return "control"
	case CategoryDecorator:
		return "decorator"
	case CategorySubTree:
		return "subtree"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory converts a category name back into a Category.
func ParseCategory(name string) (Category, error) {
	switch name {
	case "action":
		return CategoryAction, nil
	case "condition":
		return CategoryCondition, nil
	case "control":
		return CategoryControl, nil
	case "decorator":
		return CategoryDecorator, nil
	case "subtree":
		return CategorySubTree, nil
	default:
		return CategoryAction, fmt.Errorf("unknown category: %q", name)
	}
}
