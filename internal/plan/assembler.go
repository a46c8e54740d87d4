package plan

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/vk/blockscene/internal/ctxlog"
	"github.com/vk/blockscene/internal/dag"
)

// ErrNoSimulator is returned when a plan spawns entities but declares no
// simulator action.
var ErrNoSimulator = errors.New("spawn actions require a simulator action")

// Input is everything the assembler composes.
type Input struct {
	SessionID string
	// Arguments are the resolved launch argument values.
	Arguments map[string]string
	// Infrastructure holds the statically declared actions.
	Infrastructure []*Action
	// Objects are the generated blocks.
	Objects []Object
}

// Plan is an assembled, validated startup plan.
type Plan struct {
	SessionID string
	Arguments map[string]string

	byID  map[string]*Action
	order []*Action
	graph *dag.Graph
}

// Assemble composes infrastructure and per-object actions into a plan that
// satisfies the ordering rules:
//
//   - environment actions complete, in declaration order, before anything else;
//   - the simulator has started before any spawn;
//   - depends_on waits for start, on_exit_of waits for a clean exit.
//
// Input actions are copied; the caller's values are not modified.
func Assemble(ctx context.Context, in Input) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Assemble: Starting plan construction.", "infrastructure", len(in.Infrastructure), "objects", len(in.Objects))

	actions := make([]*Action, 0, len(in.Infrastructure)+2*len(in.Objects))
	for _, a := range in.Infrastructure {
		actions = append(actions, a.Clone())
	}
	for _, obj := range in.Objects {
		if obj.Descriptor == nil {
			return nil, fmt.Errorf("object %s has no materialized model", obj.Placement.Name())
		}
		actions = append(actions, ObjectActions(obj)...)
	}

	p := &Plan{
		SessionID: in.SessionID,
		Arguments: maps.Clone(in.Arguments),
		byID:      make(map[string]*Action, len(actions)),
		graph:     dag.New(),
	}

	var simulator *Action
	for _, a := range actions {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if !p.graph.AddNode(a.ID) {
			return nil, fmt.Errorf("duplicate action id %q", a.ID)
		}
		p.byID[a.ID] = a
		if a.Role == RoleSimulator {
			if simulator != nil {
				return nil, fmt.Errorf("multiple simulator actions: %q and %q", simulator.ID, a.ID)
			}
			simulator = a
		}
	}
	logger.Debug("Assemble: Action nodes created.", "count", len(actions))

	if err := p.link(actions, simulator); err != nil {
		return nil, err
	}
	logger.Debug("Assemble: Dependencies linked.")

	if err := p.graph.DetectCycles(); err != nil {
		return nil, fmt.Errorf("error validating plan dependencies: %w", err)
	}
	ids, err := p.graph.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("error validating plan dependencies: %w", err)
	}
	p.order = make([]*Action, 0, len(ids))
	for _, id := range ids {
		p.order = append(p.order, p.byID[id])
	}

	logger.Debug("Assemble: Plan construction successful.", "actions", len(p.order))
	return p, nil
}

func (p *Plan) link(actions []*Action, simulator *Action) error {
	var envs []*Action
	for _, a := range actions {
		if a.Kind == KindEnv {
			envs = append(envs, a)
		}
	}

	for _, a := range actions {
		if a.Kind == KindEnv {
			// Environment changes apply in declaration order.
			if i := slices.Index(envs, a); i > 0 {
				if err := p.graph.AddEdge(envs[i-1].ID, a.ID, string(Completed)); err != nil {
					return err
				}
			}
			continue
		}
		for _, env := range envs {
			if err := p.graph.AddEdge(env.ID, a.ID, string(Completed)); err != nil {
				return err
			}
		}

		if a.Kind == KindSpawn {
			if simulator == nil {
				return fmt.Errorf("action %q: %w", a.ID, ErrNoSimulator)
			}
			if err := p.graph.AddEdge(simulator.ID, a.ID, string(Started)); err != nil {
				return err
			}
		}
	}

	// Explicit dependencies are applied last so that on_exit_of wins over
	// any implicit "started" edge between the same pair.
	for _, a := range actions {
		for _, dep := range a.DependsOn {
			if err := p.explicitEdge(dep, a, Started); err != nil {
				return err
			}
		}
	}
	for _, a := range actions {
		for _, dep := range a.OnExitOf {
			if err := p.explicitEdge(dep, a, Exited); err != nil {
				return err
			}
			if a.Role == RoleVisualizer && p.byID[dep].Role != RoleController {
				return fmt.Errorf("action %q: visualizer must wait on the exit of a controller action, %q has role %q",
					a.ID, dep, p.byID[dep].Role)
			}
		}
	}
	return nil
}

func (p *Plan) explicitEdge(from string, to *Action, cond Condition) error {
	if !p.graph.Has(from) {
		return fmt.Errorf("action %q depends on unknown action %q", to.ID, from)
	}
	if from == to.ID {
		return fmt.Errorf("action %q depends on itself", to.ID)
	}
	return p.graph.AddEdge(from, to.ID, string(cond))
}

// Actions returns the actions in a valid start order.
func (p *Plan) Actions() []*Action {
	return slices.Clone(p.order)
}

// Action looks up an action by ID.
func (p *Plan) Action(id string) (*Action, bool) {
	a, ok := p.byID[id]
	return a, ok
}

// Dependencies returns the resolved dependencies of an action.
func (p *Plan) Dependencies(id string) []Dependency {
	edges, err := p.graph.Dependencies(id)
	if err != nil {
		return nil
	}
	deps := make([]Dependency, 0, len(edges))
	for _, e := range edges {
		deps = append(deps, Dependency{Action: e.From, Condition: Condition(e.Label)})
	}
	return deps
}

// Len returns the number of actions.
func (p *Plan) Len() int {
	return p.graph.Len()
}
