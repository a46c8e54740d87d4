package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/vk/blockscene/internal/config"
	"github.com/vk/blockscene/internal/ctxlog"
	"github.com/vk/blockscene/internal/executor"
	"github.com/vk/blockscene/internal/modelpipe"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logW   io.Writer
	logger *slog.Logger
	config *Config
	scene  *config.Model

	seed uint64
	rng  *rand.Rand

	tools    modelpipe.Toolchain
	launcher executor.Launcher

	executor   *executor.Executor
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It loads the scene
// and seeds the random source. A scene that cannot be loaded is a fatal
// startup error and panics.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, opts ...Option) *App {
	a := &App{outW: outW, logW: outW, config: cfg}
	for _, opt := range opts {
		opt(a)
	}

	a.logger = newLogger(cfg.LogLevel, cfg.LogFormat, a.logW)
	ctx := ctxlog.WithLogger(context.Background(), a.logger)
	a.logger.Debug("Logger configured successfully.")

	var paths []string
	if cfg.ScenePath != "" {
		paths = append(paths, cfg.ScenePath)
	}
	scene, err := loader.Load(ctx, config.LoadOptions{
		Overrides: cfg.Arguments,
		ShareDir:  cfg.ShareDir,
	}, paths...)
	if err != nil {
		panic(fmt.Errorf("failed to load scene: %w", err))
	}
	a.scene = scene
	a.logger.Debug("Scene loaded and translated into unified model.", "package", scene.Package.Name, "actions", len(scene.Actions))

	a.seed = cfg.Seed
	if a.seed == 0 {
		a.seed = uint64(time.Now().UnixNano())
	}
	a.rng = rand.New(rand.NewPCG(a.seed, a.seed))
	a.logger.Debug("Random source seeded.", "seed", a.seed)

	return a
}

// Scene returns the loaded scene model.
func (a *App) Scene() *config.Model {
	return a.scene
}

// Seed returns the seed of the random source, for reproducing a layout.
func (a *App) Seed() uint64 {
	return a.seed
}
