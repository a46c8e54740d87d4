package executor

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/vk/blockscene/internal/ctxlog"
	"github.com/vk/blockscene/internal/plan"
	"golang.org/x/sync/errgroup"
)

// Executor runs a plan with a Launcher. It is meant to run one plan; Status
// may be called concurrently with Run.
type Executor struct {
	launcher Launcher
	baseEnv  []string

	mu     sync.RWMutex
	order  []string
	states map[string]*ActionStatus
}

// New creates an executor. A nil env starts from the current process
// environment.
func New(launcher Launcher, env []string) *Executor {
	if env == nil {
		env = os.Environ()
	}
	return &Executor{
		launcher: launcher,
		baseEnv:  env,
		states:   make(map[string]*ActionStatus),
	}
}

// signals are closed when an action reaches the matching condition.
type signals struct {
	started chan struct{}
	done    chan struct{}
}

// Run starts every action of p once its dependencies allow it and blocks
// until all processes have exited or the run is cancelled.
func (e *Executor) Run(ctx context.Context, p *plan.Plan) error {
	logger := ctxlog.FromContext(ctx)
	actions := p.Actions()
	e.reset(actions)
	logger.Info("Plan run started.", "session", p.SessionID, "actions", len(actions))

	sigs := make(map[string]*signals, len(actions))
	for _, a := range actions {
		sigs[a.ID] = &signals{started: make(chan struct{}), done: make(chan struct{})}
	}
	env := newEnvironment(e.baseEnv)

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range actions {
		deps := p.Dependencies(a.ID)
		g.Go(func() error {
			actionCtx := ctxlog.With(gctx, "action", a.ID)
			if err := await(gctx, deps, sigs); err != nil {
				e.setState(a.ID, Skipped, nil)
				ctxlog.FromContext(actionCtx).Debug("Action skipped.", "reason", err)
				return nil
			}
			return e.runAction(actionCtx, a, env, sigs[a.ID])
		})
	}

	err := g.Wait()
	if ctx.Err() != nil {
		logger.Info("Plan run cancelled.", "reason", context.Cause(ctx))
		return nil
	}
	if err != nil {
		logger.Error("Plan run failed.", "error", err)
		return err
	}
	logger.Info("Plan run finished.")
	return nil
}

// await blocks until every dependency reached its condition.
func await(ctx context.Context, deps []plan.Dependency, sigs map[string]*signals) error {
	for _, dep := range deps {
		ch := sigs[dep.Action].done
		if dep.Condition == plan.Started {
			ch = sigs[dep.Action].started
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (e *Executor) runAction(ctx context.Context, a *plan.Action, env *environment, sig *signals) error {
	logger := ctxlog.FromContext(ctx)

	if a.Kind == plan.KindEnv {
		value := env.apply(a.Env)
		logger.Info("Environment variable set.", "name", a.Env.Name, "value", value)
		e.setState(a.ID, Exited, nil)
		close(sig.started)
		close(sig.done)
		return nil
	}

	e.setState(a.ID, Running, nil)
	proc, err := e.launcher.Launch(ctx, a, env.snapshot())
	if err != nil {
		if ctx.Err() != nil {
			e.setState(a.ID, Skipped, nil)
			return nil
		}
		err = fmt.Errorf("failed to start action %s: %w", a.ID, err)
		e.setState(a.ID, Failed, err)
		return err
	}
	close(sig.started)
	logger.Info("Action started.", "kind", a.Kind)

	if err := proc.Wait(); err != nil {
		if ctx.Err() != nil {
			e.setState(a.ID, Stopped, nil)
			logger.Debug("Action stopped.", "reason", err)
			return nil
		}
		err = fmt.Errorf("action %s exited with error: %w", a.ID, err)
		e.setState(a.ID, Failed, err)
		if a.Role == plan.RoleController {
			// Dependents of a controller start on any exit status.
			close(sig.done)
			logger.Warn("Controller action failed.", "error", err)
			return nil
		}
		return err
	}
	e.setState(a.ID, Exited, nil)
	close(sig.done)
	logger.Info("Action exited.")
	return nil
}

func (e *Executor) reset(actions []*plan.Action) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.order = make([]string, 0, len(actions))
	e.states = make(map[string]*ActionStatus, len(actions))
	for _, a := range actions {
		e.order = append(e.order, a.ID)
		e.states[a.ID] = &ActionStatus{ID: a.ID, State: Pending}
	}
}

func (e *Executor) setState(id string, s State, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.states[id]; ok {
		st.State = s
		st.Err = err
	}
}

// Status returns the state of every action in plan order.
func (e *Executor) Status() []ActionStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]ActionStatus, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, *e.states[id])
	}
	return out
}
