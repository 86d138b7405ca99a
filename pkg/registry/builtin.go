package registry

import (
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/bramblebt/bramble/pkg/control"
	"github.com/bramblebt/bramble/pkg/decorator"
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/node"
)

// decodeParams fills a typed params struct from the raw definition map.
// out carries the defaults; absent keys leave them untouched.
func decodeParams(name string, raw map[string]any, out any) error {
	if len(raw) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return domain.NewBuildError(name, "params decoder: %v", err)
	}
	if err := dec.Decode(raw); err != nil {
		return domain.NewBuildError(name, "invalid params: %v", err)
	}
	return nil
}

func registerBuiltins(r *Registry) {
	// Controls.
	r.Register(
		Manifest{Type: "Sequence", Category: domain.CategoryControl,
			Description: "ticks children in order, fails fast, resumes from the running child"},
		func(name string, cfg *node.Config, children []node.Node) (node.Node, error) {
			return control.NewSequence(name, cfg, children), nil
		},
	)
	r.Register(
		Manifest{Type: "Fallback", Category: domain.CategoryControl,
			Description: "ticks children in order until one succeeds"},
		func(name string, cfg *node.Config, children []node.Node) (node.Node, error) {
			return control.NewFallback(name, cfg, children), nil
		},
	)
	r.Register(
		Manifest{Type: "Parallel", Category: domain.CategoryControl,
			Description: "ticks all pending children each cycle, concluding on configurable thresholds"},
		func(name string, cfg *node.Config, children []node.Node) (node.Node, error) {
			params := control.DefaultParallelParams()
			if err := decodeParams(name, cfg.Params, &params); err != nil {
				return nil, err
			}
			return control.NewParallel(name, cfg, children, params)
		},
	)

	// Decorators.
	r.Register(
		Manifest{Type: "Inverter", Category: domain.CategoryDecorator,
			Description: "swaps the child's success and failure"},
		func(name string, cfg *node.Config, children []node.Node) (node.Node, error) {
			return decorator.NewInverter(name, cfg, children[0]), nil
		},
	)
	r.Register(
		Manifest{Type: "RetryUntilSuccessful", Category: domain.CategoryDecorator,
			Description: "re-ticks a failing child up to num_attempts times"},
		func(name string, cfg *node.Config, children []node.Node) (node.Node, error) {
			params := decorator.RetryParams{NumAttempts: 1}
			if err := decodeParams(name, cfg.Params, &params); err != nil {
				return nil, err
			}
			return decorator.NewRetry(name, cfg, children[0], params)
		},
	)
	r.Register(
		Manifest{Type: "Repeat", Category: domain.CategoryDecorator,
			Description: "re-ticks a succeeding child up to num_cycles times"},
		func(name string, cfg *node.Config, children []node.Node) (node.Node, error) {
			params := decorator.RepeatParams{NumCycles: 1}
			if err := decodeParams(name, cfg.Params, &params); err != nil {
				return nil, err
			}
			return decorator.NewRepeat(name, cfg, children[0], params)
		},
	)
	r.Register(
		Manifest{Type: "ForceSuccess", Category: domain.CategoryDecorator,
			Description: "coerces any terminal child result to success"},
		func(name string, cfg *node.Config, children []node.Node) (node.Node, error) {
			return decorator.NewForceSuccess(name, cfg, children[0]), nil
		},
	)
	r.Register(
		Manifest{Type: "ForceFailure", Category: domain.CategoryDecorator,
			Description: "coerces any terminal child result to failure"},
		func(name string, cfg *node.Config, children []node.Node) (node.Node, error) {
			return decorator.NewForceFailure(name, cfg, children[0]), nil
		},
	)
	r.Register(
		Manifest{Type: "RunOnce", Category: domain.CategoryDecorator,
			Description: "runs the child to completion once, then skips or latches"},
		func(name string, cfg *node.Config, children []node.Node) (node.Node, error) {
			params := decorator.DefaultRunOnceParams()
			if err := decodeParams(name, cfg.Params, &params); err != nil {
				return nil, err
			}
			return decorator.NewRunOnce(name, cfg, children[0], params), nil
		},
	)

	// Script leaves, backed by the injected evaluator.
	scriptPorts := domain.PortList{domain.InputPort("code", "string", "script to evaluate")}
	r.Register(
		Manifest{Type: "Script", Category: domain.CategoryAction, Ports: scriptPorts,
			Description: "evaluates a script for its blackboard side effects"},
		func(name string, cfg *node.Config, _ []node.Node) (node.Node, error) {
			return node.NewAction(name, cfg, scriptTick(false)), nil
		},
	)
	r.Register(
		Manifest{Type: "ScriptCondition", Category: domain.CategoryCondition, Ports: scriptPorts,
			Description: "evaluates a script; truthy means success"},
		func(name string, cfg *node.Config, _ []node.Node) (node.Node, error) {
			return node.NewCondition(name, cfg, scriptTick(true)), nil
		},
	)

	// Trivial leaves, useful in tests and as placeholders.
	r.RegisterAction("AlwaysSuccess", nil, func(*node.Config) (domain.Status, error) {
		return domain.StatusSuccess, nil
	})
	r.RegisterAction("AlwaysFailure", nil, func(*node.Config) (domain.Status, error) {
		return domain.StatusFailure, nil
	})

	// Sleep demonstrates cooperative suspension: it returns Running until
	// its deadline passes and is re-ticked on later cycles.
	r.Register(
		Manifest{Type: "Sleep", Category: domain.CategoryAction,
			Ports: domain.PortList{domain.InputPort("duration", "duration", "how long to stay running")},
			Description: "stays running until the duration elapses"},
		func(name string, cfg *node.Config, _ []node.Node) (node.Node, error) {
			var deadline time.Time
			action := node.NewAction(name, cfg, func(c *node.Config) (domain.Status, error) {
				if deadline.IsZero() {
					d, err := node.Input[time.Duration](c, "duration")
					if err != nil {
						return domain.StatusFailure, err
					}
					deadline = time.Now().Add(d)
					return domain.StatusRunning, nil
				}
				if time.Now().Before(deadline) {
					return domain.StatusRunning, nil
				}
				deadline = time.Time{}
				return domain.StatusSuccess, nil
			})
			action.OnHalt(func() { deadline = time.Time{} })
			return action, nil
		},
	)
}

// scriptTick builds the tick function shared by Script and ScriptCondition.
func scriptTick(asCondition bool) node.TickFunc {
	return func(c *node.Config) (domain.Status, error) {
		code, err := node.Input[string](c, "code")
		if err != nil {
			return domain.StatusFailure, err
		}
		if c.Evaluator == nil {
			return domain.StatusFailure, domain.NewPortError(c.Path, "code", "no script evaluator configured")
		}
		out, err := c.Evaluator.Eval(code, c.Blackboard)
		if err != nil {
			return domain.StatusFailure, domain.NewPortError(c.Path, "code", "script failed: %v", err)
		}
		if asCondition && !node.Truthy(out) {
			return domain.StatusFailure, nil
		}
		return domain.StatusSuccess, nil
	}
}
