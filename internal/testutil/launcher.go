package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/vk/blockscene/internal/executor"
	"github.com/vk/blockscene/internal/plan"
)

// LaunchRecord is one call to FakeLauncher.Launch.
type LaunchRecord struct {
	ID  string
	Env []string
}

// FakeLauncher is an in-memory executor.Launcher. The process of every
// launched action ends when Behavior returns; without a Behavior it exits
// cleanly right away.
type FakeLauncher struct {
	Behavior func(ctx context.Context, a *plan.Action) error
	// LaunchErr makes the launch of the named actions fail.
	LaunchErr map[string]error

	mu       sync.Mutex
	launched []LaunchRecord
}

// Launch implements executor.Launcher.
func (f *FakeLauncher) Launch(ctx context.Context, a *plan.Action, env []string) (executor.Process, error) {
	if err := f.LaunchErr[a.ID]; err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.launched = append(f.launched, LaunchRecord{ID: a.ID, Env: slices.Clone(env)})
	f.mu.Unlock()

	p := &fakeProcess{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		if f.Behavior != nil {
			p.err = f.Behavior(ctx, a)
		}
	}()
	return p, nil
}

// Launched returns the launch records in call order.
func (f *FakeLauncher) Launched() []LaunchRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.launched)
}

// LaunchedIDs returns the ids of the launched actions in call order.
func (f *FakeLauncher) LaunchedIDs() []string {
	records := f.Launched()
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

// UntilCancelled is a Behavior for processes that run until stopped.
func UntilCancelled(ctx context.Context, _ *plan.Action) error {
	<-ctx.Done()
	return ctx.Err()
}

type fakeProcess struct {
	done chan struct{}
	err  error
}

func (p *fakeProcess) Wait() error {
	<-p.done
	return p.err
}
