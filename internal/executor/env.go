package executor

import (
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/vk/blockscene/internal/plan"
)

// environment is the KEY=VALUE list handed to started processes.
type environment struct {
	mu   sync.Mutex
	vars []string
}

func newEnvironment(base []string) *environment {
	return &environment{vars: slices.Clone(base)}
}

func (e *environment) index(name string) int {
	prefix := name + "="
	return slices.IndexFunc(e.vars, func(kv string) bool { return strings.HasPrefix(kv, prefix) })
}

// apply sets the variable, or appends to its current value, joining values
// with the OS path list separator. It returns the resulting value.
func (e *environment) apply(change *plan.EnvChange) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	sep := string(os.PathListSeparator)
	value := strings.Join(change.Values, sep)
	i := e.index(change.Name)
	if change.Append && i >= 0 {
		if current := strings.TrimPrefix(e.vars[i], change.Name+"="); current != "" {
			value = current + sep + value
		}
	}

	kv := change.Name + "=" + value
	if i >= 0 {
		e.vars[i] = kv
	} else {
		e.vars = append(e.vars, kv)
	}
	return value
}

func (e *environment) snapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.vars)
}
