package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/vk/blockscene/internal/ctxlog"
	"github.com/vk/blockscene/internal/modelpipe"
	"github.com/vk/blockscene/internal/plan"
)

// Process is a started action.
type Process interface {
	// Wait blocks until the process exits. A non-nil error means it did
	// not exit cleanly.
	Wait() error
}

// Launcher starts the process of a node, include or spawn action. The
// process must stop when ctx is cancelled.
type Launcher interface {
	Launch(ctx context.Context, a *plan.Action, env []string) (Process, error)
}

// StopGracePeriod is how long a process may take to exit after it was
// interrupted before it is killed.
const StopGracePeriod = 10 * time.Second

// ExecLauncher starts actions as ros2 subprocesses. Robot descriptions are
// expanded with the toolchain right before the process starts.
type ExecLauncher struct {
	ros2   string
	tools  modelpipe.Toolchain
	stdout io.Writer
	stderr io.Writer
}

// NewExecLauncher resolves the ros2 executable on PATH.
func NewExecLauncher(tools modelpipe.Toolchain, stdout, stderr io.Writer) (*ExecLauncher, error) {
	path, err := exec.LookPath(plan.Ros2)
	if err != nil {
		return nil, fmt.Errorf("could not find %s executable: %w", plan.Ros2, err)
	}
	return NewExecLauncherWithPath(path, tools, stdout, stderr), nil
}

// NewExecLauncherWithPath uses an explicit ros2 executable path.
func NewExecLauncherWithPath(ros2 string, tools modelpipe.Toolchain, stdout, stderr io.Writer) *ExecLauncher {
	return &ExecLauncher{ros2: ros2, tools: tools, stdout: stdout, stderr: stderr}
}

// Launch implements Launcher.
func (l *ExecLauncher) Launch(ctx context.Context, a *plan.Action, env []string) (Process, error) {
	logger := ctxlog.FromContext(ctx).With("action", a.ID)

	var description string
	if a.Description != nil {
		expanded, err := l.tools.Expand(ctx, a.Description.Template, descriptionParams(a.Description.Params))
		if err != nil {
			return nil, fmt.Errorf("error expanding description of %s: %w", a.ID, err)
		}
		description = expanded
		logger.Debug("Description expanded.", "template", a.Description.Template, "bytes", len(description))
	}

	argv := plan.CommandLine(a, description)
	if len(argv) == 0 {
		return nil, fmt.Errorf("action %s of kind %s has no command line", a.ID, a.Kind)
	}

	cmd := exec.CommandContext(ctx, l.ros2, argv...)
	cmd.Env = env
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr
	// ROS nodes shut down cleanly on SIGINT.
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = StopGracePeriod

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("error starting %s: %w", a.ID, err)
	}
	logger.Debug("Process started.", "pid", cmd.Process.Pid, "command", shellquote.Join(plan.CommandLine(a, "<description>")...))
	return cmd, nil
}

// descriptionParams orders template parameters by key.
func descriptionParams(params map[string]string) []modelpipe.Param {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]modelpipe.Param, 0, len(keys))
	for _, k := range keys {
		out = append(out, modelpipe.Param{Key: k, Value: params[k]})
	}
	return out
}
