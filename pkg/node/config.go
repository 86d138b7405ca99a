package node

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bramblebt/bramble/pkg/blackboard"
	"github.com/bramblebt/bramble/pkg/domain"
)

// Evaluator is the pluggable scripting contract consumed by the engine:
// guards, postconditions and Script leaves hand expression strings to it.
// The default implementation lives in pkg/script.
type Evaluator interface {
	Eval(code string, bb *blackboard.Blackboard) (any, error)
}

// Conditions holds the optional guard and postcondition scripts of a node.
// Preconditions run before Tick (and can bypass it entirely, yielding
// Skipped/Success/Failure); postconditions run for their blackboard side
// effects after a terminal result.
type Conditions struct {
	SkipIf    string
	SuccessIf string
	FailureIf string
	OnSuccess string
	OnFailure string
	OnHalted  string
}

// Config is the immutable bundle a node receives at construction: its port
// remapping tables, its blackboard scope, static parameters, and condition
// scripts. It is never mutated after the node is built; a node wanting a
// fresh configuration must be re-instantiated.
type Config struct {
	// Blackboard is the scope this node reads and writes through its ports.
	Blackboard *blackboard.Blackboard

	// InputPorts and OutputPorts map declared port names to their raw
	// bindings: either a literal value or a "{blackboard_key}" pointer.
	InputPorts  map[string]string
	OutputPorts map[string]string

	// Manifest is the static port declaration list of the node type.
	Manifest domain.PortList

	// Params carries static, non-port parameters from the definition
	// document (e.g. a Parallel node's thresholds).
	Params map[string]any

	Conditions Conditions
	Evaluator  Evaluator

	// Path is the fully qualified location of the node inside the composed
	// tree, for logs and diagnostics.
	Path string
}

// NewConfig creates a minimal configuration over a blackboard scope.
// Handy for tests and programmatically assembled trees.
func NewConfig(bb *blackboard.Blackboard) *Config {
	return &Config{Blackboard: bb}
}

// IsPointer reports whether a raw port binding uses the "{key}" syntax that
// points at a blackboard entry rather than carrying a literal.
func IsPointer(raw string) bool {
	return len(raw) >= 2 && strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}")
}

// PointerKey extracts the blackboard key from a "{key}" binding.
func PointerKey(raw string) string {
	return strings.TrimSpace(raw[1 : len(raw)-1])
}

// Input resolves the named input port to a value of type T.
//
// Resolution order: explicit binding (literal or blackboard pointer, the
// pointer resolving through the scope chain including autoremap) → declared
// default → error if the port is required. A stored value of a mismatched
// type yields a PortError wrapping domain.ErrTypeMismatch.
func Input[T any](c *Config, port string) (T, error) {
	var zero T

	info, ok := c.Manifest.Find(port)
	if !ok || info.Direction == domain.PortOut {
		return zero, domain.NewPortError(c.Path, port, "not a declared input port")
	}

	raw, bound := c.InputPorts[port]
	if bound {
		if IsPointer(raw) {
			v, err := blackboard.Get[T](c.Blackboard, PointerKey(raw))
			if err == nil {
				return v, nil
			}
			if errors.Is(err, domain.ErrKeyNotFound) && info.Default != "" {
				return parseLiteral[T](c, port, info.Default)
			}
			return zero, &domain.PortError{Node: c.Path, Port: port, Reason: err.Error(), Err: err}
		}
		return parseLiteral[T](c, port, raw)
	}

	if info.Default != "" {
		return parseLiteral[T](c, port, info.Default)
	}
	if info.Required {
		return zero, &domain.PortError{
			Node: c.Path, Port: port,
			Reason: "required port has no binding and no default",
			Err:    domain.ErrKeyNotFound,
		}
	}
	return zero, &domain.PortError{
		Node: c.Path, Port: port,
		Reason: "optional port unresolved",
		Err:    domain.ErrKeyNotFound,
	}
}

// SetOutput writes a value through the named output port to its resolved
// blackboard entry, creating the entry on first write. An unbound output
// port targets an entry under the port's own name in the node's scope.
func SetOutput[T any](c *Config, port string, value T) error {
	info, ok := c.Manifest.Find(port)
	if !ok || info.Direction == domain.PortIn {
		return domain.NewPortError(c.Path, port, "not a declared output port")
	}

	key := port
	if raw, bound := c.OutputPorts[port]; bound {
		if !IsPointer(raw) {
			return domain.NewPortError(c.Path, port, "output port bound to literal %q", raw)
		}
		key = PointerKey(raw)
	}

	if err := c.Blackboard.Set(key, value); err != nil {
		return &domain.PortError{Node: c.Path, Port: port, Reason: err.Error(), Err: err}
	}
	return nil
}

// parseLiteral converts a textual port value to the requested Go type.
func parseLiteral[T any](c *Config, port, raw string) (T, error) {
	var out T
	var err error

	switch p := any(&out).(type) {
	case *string:
		*p = raw
	case *int:
		*p, err = strconv.Atoi(raw)
	case *int64:
		*p, err = strconv.ParseInt(raw, 10, 64)
	case *float64:
		*p, err = strconv.ParseFloat(raw, 64)
	case *bool:
		*p, err = strconv.ParseBool(raw)
	case *time.Duration:
		*p, err = time.ParseDuration(raw)
	case *any:
		*p = raw
	default:
		err = fmt.Errorf("unsupported literal target %T", out)
	}
	if err != nil {
		return out, domain.NewPortError(c.Path, port, "cannot convert literal %q: %v", raw, err)
	}
	return out, nil
}
