package domain

// PortDirection tells whether a node reads, writes, or both through a port.
type PortDirection int

const (
	PortIn PortDirection = iota
	PortOut
	PortInOut
)

func (d PortDirection) String() string {
	switch d {
	case PortIn:
		return "in"
	case PortOut:
		return "out"
	case PortInOut:
		return "inout"
	default:
		return "unknown"
	}
}

// PortInfo declares a typed, named data binding on a node type.
// It is a declaration of capability, not a value; the binding to an actual
// blackboard entry happens at tree-build time through the remapping table.
type PortInfo struct {
	Name      string
	Direction PortDirection

	// Type is the declared value type name: "string", "int", "float",
	// "bool" or "any". Blackboard access with a mismatched Go type is a
	// PortError, never a silent coercion.
	Type string

	// Required ports must be bound (or carry a Default) at build time.
	Required bool

	// Default is the literal fallback used when an input port resolves to
	// nothing at tick time. Stored as its textual form and converted on use.
	Default string

	Description string
}

// PortList is the static port manifest of a node type.
type PortList []PortInfo

// Find returns the declaration for the named port.
func (l PortList) Find(name string) (PortInfo, bool) {
	for _, p := range l {
		if p.Name == name {
			return p, true
		}
	}
	return PortInfo{}, false
}

// InputPort declares a required input port.
func InputPort(name, typ, description string) PortInfo {
	return PortInfo{Name: name, Direction: PortIn, Type: typ, Required: true, Description: description}
}

// OptionalInputPort declares an input port with a literal default.
func OptionalInputPort(name, typ, def, description string) PortInfo {
	return PortInfo{Name: name, Direction: PortIn, Type: typ, Default: def, Description: description}
}

// OutputPort declares an output port.
func OutputPort(name, typ, description string) PortInfo {
	return PortInfo{Name: name, Direction: PortOut, Type: typ, Required: true, Description: description}
}

// BidiPort declares a bidirectional port.
func BidiPort(name, typ, description string) PortInfo {
	return PortInfo{Name: name, Direction: PortInOut, Type: typ, Description: description}
}
