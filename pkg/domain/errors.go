package domain

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned when a blackboard key cannot be resolved in the
// scope chain.
var ErrKeyNotFound = errors.New("blackboard key not found")

// ErrTypeMismatch is returned when a blackboard entry is accessed with a type
// different from the one fixed by its first write.
var ErrTypeMismatch = errors.New("blackboard type mismatch")

// ErrTreeNotFound is returned when a tree id cannot be resolved in a
// definition document.
var ErrTreeNotFound = errors.New("tree definition not found")

// BuildError reports a defect in the tree definition or registry wiring.
// It is raised once, at tree construction, and never during ticking.
type BuildError struct {
	Node   string // node type or instance the error was detected on
	Reason string
	Err    error
}

func (e *BuildError) Error() string {
	if e.Node == "" {
		return "build: " + e.Reason
	}
	return fmt.Sprintf("build %s: %s", e.Node, e.Reason)
}

func (e *BuildError) Unwrap() error { return e.Err }

// NewBuildError creates a BuildError with a formatted reason.
func NewBuildError(node, format string, args ...any) *BuildError {
	return &BuildError{Node: node, Reason: fmt.Sprintf(format, args...)}
}

// PortError reports a failed port access at tick time. It propagates to the
// caller of Tick, aborting the current cycle; the tree is left in whatever
// partial status state the cycle reached and a later tick may retry.
type PortError struct {
	Node   string
	Port   string
	Reason string
	Err    error
}

func (e *PortError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("node %s: %s", e.Node, e.Reason)
	}
	return fmt.Sprintf("node %s, port %q: %s", e.Node, e.Port, e.Reason)
}

func (e *PortError) Unwrap() error { return e.Err }

// NewPortError creates a PortError with a formatted reason.
func NewPortError(node, port, format string, args ...any) *PortError {
	return &PortError{Node: node, Port: port, Reason: fmt.Sprintf(format, args...)}
}

// LogicError reports a contract violation by a node implementation, such as
// returning Idle from Tick. It marks a programming defect in the node and is
// surfaced immediately rather than coerced into a tick result.
type LogicError struct {
	Node   string
	Reason string
}

func (e *LogicError) Error() string {
	return fmt.Sprintf("node %s: %s", e.Node, e.Reason)
}
