package control_test

import (
	"github.com/bramblebt/bramble/pkg/blackboard"
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

// stub is a scripted leaf for composite tests: it returns the queued
// statuses in order (sticking on the last one) and counts ticks and halts.
type stub struct {
	*node.Action
	ticks int
	halts int
}

func newStub(name string, script ...domain.Status) *stub {
	s := &stub{}
	i := 0
	s.Action = node.NewAction(name, node.NewConfig(blackboard.New()),
		func(*node.Config) (domain.Status, error) {
			s.ticks++
			st := script[i]
			if i < len(script)-1 {
				i++
			}
			return st, nil
		}).OnHalt(func() { s.halts++ })
	return s
}

func asNodes(stubs ...*stub) []node.Node {
	out := make([]node.Node, len(stubs))
	for i, s := range stubs {
		out[i] = s
	}
	return out
}

func cfg() *node.Config { return node.NewConfig(blackboard.New()) }
