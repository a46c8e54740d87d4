package app

import (
	"io"

	"github.com/vk/blockscene/internal/executor"
	"github.com/vk/blockscene/internal/modelpipe"
)

// Option customizes an App.
type Option func(*App)

// WithToolchain replaces the xacro/gz toolchain resolved from PATH.
func WithToolchain(t modelpipe.Toolchain) Option {
	return func(a *App) { a.tools = t }
}

// WithLauncher replaces the ros2 process launcher.
func WithLauncher(l executor.Launcher) Option {
	return func(a *App) { a.launcher = l }
}

// WithLogOutput sends log records to w instead of the output writer, which
// then only carries the plan manifest.
func WithLogOutput(w io.Writer) Option {
	return func(a *App) { a.logW = w }
}
