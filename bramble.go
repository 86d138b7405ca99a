package bramble

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
	"github.com/bramblebt/bramble/pkg/registry"
	"github.com/bramblebt/bramble/pkg/schema"
	"github.com/bramblebt/bramble/pkg/script"
	"github.com/bramblebt/bramble/pkg/tree"
)

// Factory is the high-level entry point for the Bramble library.
// It bundles a node registry and a script evaluator and turns tree
// definitions into ready-to-tick runtime trees.
type Factory struct {
	registry  *registry.Registry
	evaluator node.Evaluator
	logger    *slog.Logger
	Name      string
}

// Option defines a functional option for configuring the Factory.
type Option func(*Factory)

// WithRegistry injects a custom node registry, bypassing the default one
// with the built-in node set.
func WithRegistry(reg *registry.Registry) Option {
	return func(f *Factory) {
		f.registry = reg
	}
}

// WithEvaluator sets a custom script evaluator for guards, postconditions
// and Script nodes.
func WithEvaluator(ev node.Evaluator) Option {
	return func(f *Factory) {
		f.evaluator = ev
	}
}

// WithLogger sets a custom structured logger for the factory.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		f.logger = logger
	}
}

// New initializes a new Bramble Factory.
// By default it carries the built-in node registry and an expression
// evaluator with a warm program cache; both can be replaced with options.
func New(opts ...Option) *Factory {
	f := &Factory{}
	for _, opt := range opts {
		opt(f)
	}

	if f.registry == nil {
		f.registry = registry.Default()
	}
	if f.evaluator == nil {
		f.evaluator = script.New()
	}
	if f.logger == nil {
		f.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return f
}

// Registry returns the factory's node registry, for direct registration of
// custom builders and manifests.
func (f *Factory) Registry() *registry.Registry {
	return f.registry
}

// RegisterAction registers a custom leaf action under the given type name.
func (f *Factory) RegisterAction(name string, ports domain.PortList, tick node.TickFunc) {
	f.registry.RegisterAction(name, ports, tick)
}

// RegisterCondition registers a custom leaf condition under the given type
// name.
func (f *Factory) RegisterCondition(name string, ports domain.PortList, tick node.TickFunc) {
	f.registry.RegisterCondition(name, ports, tick)
}

// CreateTree instantiates the runtime tree for an already parsed document.
func (f *Factory) CreateTree(doc *schema.Document, opts ...tree.BuildOption) (*tree.Tree, error) {
	buildOpts := []tree.BuildOption{
		tree.WithEvaluator(f.evaluator),
		tree.WithLogger(f.logger),
	}
	buildOpts = append(buildOpts, opts...)
	return tree.Build(doc, f.registry, buildOpts...)
}

// CreateTreeFromText parses a tree definition and instantiates it.
func (f *Factory) CreateTreeFromText(text []byte, opts ...tree.BuildOption) (*tree.Tree, error) {
	doc, err := schema.Parse(text)
	if err != nil {
		return nil, err
	}
	return f.CreateTree(doc, opts...)
}

// CreateTreeFromFile loads a tree definition file and instantiates it.
// The file's base name is kept as the factory's display name for logging.
func (f *Factory) CreateTreeFromFile(path string, opts ...tree.BuildOption) (*tree.Tree, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	f.Name = filepath.Base(absPath)

	doc, err := schema.ParseFile(absPath)
	if err != nil {
		return nil, err
	}
	return f.CreateTree(doc, opts...)
}
