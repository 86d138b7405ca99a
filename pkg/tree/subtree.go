package tree

import (
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

// subTree is the node wrapping an instantiated subtree reference. The
// wrapped root lives in its own blackboard scope, created at build time with
// the reference's remapping table and autoremap flag; the subTree node
// itself is transparent and forwards every status.
type subTree struct {
	node.Base
	child node.Node
}

func newSubTree(name string, cfg *node.Config, child node.Node) *subTree {
	return &subTree{Base: node.NewBase(name, domain.CategorySubTree, cfg), child: child}
}

func (s *subTree) Tick() (domain.Status, error) {
	st, err := node.ExecuteTick(s.child)
	if err != nil {
		return st, err
	}
	if st.IsTerminal() {
		s.resetChild()
	}
	return st, nil
}

func (s *subTree) resetChild() {
	switch s.child.Status() {
	case domain.StatusRunning:
		s.child.Halt()
	case domain.StatusIdle:
	default:
		s.child.SetStatus(domain.StatusIdle)
	}
}

func (s *subTree) Halt() {
	s.resetChild()
	s.Base.Halt()
}
