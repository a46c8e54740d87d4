package modelpipe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/vk/blockscene/internal/ctxlog"
)

// Param is one key:=value argument passed to the template expander. Params
// are kept ordered so the invoked command line is stable.
type Param struct {
	Key   string
	Value string
}

// String renders the parameter the way xacro expects it.
func (p Param) String() string {
	return p.Key + ":=" + p.Value
}

// Toolchain is the capability the pipeline needs from the outside world.
type Toolchain interface {
	// Expand renders template with params and returns the structured
	// description it produced.
	Expand(ctx context.Context, template string, params []Param) (string, error)
	// Convert translates the description stored at path into the scene
	// description format.
	Convert(ctx context.Context, path string) (string, error)
}

// ToolError reports a failed external tool invocation.
type ToolError struct {
	Command []string
	Stderr  string
	Err     error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("command %s failed: %v", shellquote.Join(e.Command...), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// ToolNames are the executable names looked up on PATH.
type ToolNames struct {
	Xacro string
	Gz    string
}

// DefaultToolNames returns the standard executable names.
func DefaultToolNames() ToolNames {
	return ToolNames{Xacro: "xacro", Gz: "gz"}
}

// ExecToolchain runs xacro and gz as subprocesses.
type ExecToolchain struct {
	xacro string
	gz    string
}

// NewExecToolchain resolves both executables on PATH.
func NewExecToolchain(names ToolNames) (*ExecToolchain, error) {
	xacro, err := exec.LookPath(names.Xacro)
	if err != nil {
		return nil, fmt.Errorf("template expander %q not found: %w", names.Xacro, err)
	}
	gz, err := exec.LookPath(names.Gz)
	if err != nil {
		return nil, fmt.Errorf("format converter %q not found: %w", names.Gz, err)
	}
	return NewExecToolchainWithPaths(xacro, gz), nil
}

// NewExecToolchainWithPaths skips PATH lookup and uses the given binaries.
func NewExecToolchainWithPaths(xacro, gz string) *ExecToolchain {
	return &ExecToolchain{xacro: xacro, gz: gz}
}

// Expand runs `xacro <template> key:=value...`.
func (t *ExecToolchain) Expand(ctx context.Context, template string, params []Param) (string, error) {
	argv := make([]string, 0, len(params)+2)
	argv = append(argv, t.xacro, template)
	for _, p := range params {
		argv = append(argv, p.String())
	}
	return run(ctx, argv)
}

// Convert runs `gz sdf -p <path>`.
func (t *ExecToolchain) Convert(ctx context.Context, path string) (string, error) {
	return run(ctx, []string{t.gz, "sdf", "-p", path})
}

func run(ctx context.Context, argv []string) (string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Invoking external tool.", "command", shellquote.Join(argv...))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &ToolError{Command: argv, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return stdout.String(), nil
}
