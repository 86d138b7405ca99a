package schema

// Document is the root of a tree-definition file: one or more named trees,
// plus the id of the tree to execute by default.
type Document struct {
	// Root selects the main tree. Optional when the document holds exactly
	// one tree.
	Root string `yaml:"root,omitempty" json:"root,omitempty"`

	Trees []TreeDef `yaml:"trees" json:"trees"`
}

// TreeDef is a named tree definition.
type TreeDef struct {
	ID   string   `yaml:"id" json:"id"`
	Root *NodeDef `yaml:"root" json:"root"`
}

// NodeDef is one node element of the hierarchical definition document.
//
// Ports supplies the port remapping table: each value is either a literal
// ("hello", "5") or a blackboard pointer ("{key}"). Params carries static,
// non-port parameters such as a Parallel node's thresholds. SubTree nodes
// reference another named tree via Tree and may set AutoRemap to forward
// unlisted ports to the parent scope under their own names.
type NodeDef struct {
	Type string `yaml:"type" json:"type"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	Ports  map[string]string `yaml:"ports,omitempty" json:"ports,omitempty"`
	Params map[string]any    `yaml:"params,omitempty" json:"params,omitempty"`

	// SubTree reference.
	Tree      string `yaml:"tree,omitempty" json:"tree,omitempty"`
	AutoRemap bool   `yaml:"autoremap,omitempty" json:"autoremap,omitempty"`

	// Precondition guards.
	SkipIf    string `yaml:"skip_if,omitempty" json:"skip_if,omitempty"`
	SuccessIf string `yaml:"success_if,omitempty" json:"success_if,omitempty"`
	FailureIf string `yaml:"failure_if,omitempty" json:"failure_if,omitempty"`

	// Postcondition scripts.
	OnSuccess string `yaml:"on_success,omitempty" json:"on_success,omitempty"`
	OnFailure string `yaml:"on_failure,omitempty" json:"on_failure,omitempty"`
	OnHalted  string `yaml:"on_halted,omitempty" json:"on_halted,omitempty"`

	// Child (decorators) or Children (controls). Exactly one of the two
	// may be set, matching the node category's arity.
	Child    *NodeDef   `yaml:"child,omitempty" json:"child,omitempty"`
	Children []*NodeDef `yaml:"children,omitempty" json:"children,omitempty"`
}

// DisplayName returns the instance name: the explicit name when given,
// otherwise the type name.
func (n *NodeDef) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.Type
}

// AllChildren returns the child list regardless of arity form.
func (n *NodeDef) AllChildren() []*NodeDef {
	if n.Child != nil {
		return []*NodeDef{n.Child}
	}
	return n.Children
}

// Tree returns the definition with the given id.
func (d *Document) Tree(id string) (*TreeDef, bool) {
	for i := range d.Trees {
		if d.Trees[i].ID == id {
			return &d.Trees[i], true
		}
	}
	return nil, false
}

// MainTree resolves the tree the document designates as its entry point.
func (d *Document) MainTree() (*TreeDef, bool) {
	if d.Root != "" {
		return d.Tree(d.Root)
	}
	if len(d.Trees) == 1 {
		return &d.Trees[0], true
	}
	return nil, false
}
