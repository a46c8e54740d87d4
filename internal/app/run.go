package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/vk/blockscene/internal/catalog"
	"github.com/vk/blockscene/internal/ctxlog"
	"github.com/vk/blockscene/internal/executor"
	"github.com/vk/blockscene/internal/modelpipe"
	"github.com/vk/blockscene/internal/placement"
	"github.com/vk/blockscene/internal/plan"
)

// Run generates the scene, assembles the plan and, unless this is a dry
// run, executes it until every process exited or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	session := uuid.NewString()
	ctx = ctxlog.With(ctxlog.WithLogger(ctx, a.logger), "session", session)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.")

	// Signals also interrupt block placement, which can loop without bound.
	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	objects, err := a.materialize(runCtx)
	if err != nil {
		return err
	}

	p, err := plan.Assemble(ctx, plan.Input{
		SessionID:      session,
		Arguments:      a.scene.Resolved,
		Infrastructure: a.scene.Actions,
		Objects:        objects,
	})
	if err != nil {
		return fmt.Errorf("failed to assemble plan: %w", err)
	}
	logger.Info("Plan assembled.", "actions", p.Len(), "blocks", len(objects))

	if a.config.PlanOut != "" {
		if err := writePlanFile(a.config.PlanOut, p); err != nil {
			return err
		}
		logger.Info("Plan manifest written.", "path", a.config.PlanOut)
	}

	if a.config.DryRun {
		logger.Debug("Dry run, writing manifest instead of executing.")
		return p.WriteManifest(a.outW)
	}

	launcher, err := a.processLauncher()
	if err != nil {
		return err
	}
	a.executor = executor.New(launcher, os.Environ())

	if a.config.HealthcheckPort > 0 {
		a.startHealthCheckServer(ctx)
		defer func() {
			if err := a.closeHealthCheckServer(ctx); err != nil {
				logger.Warn("Health check server did not shut down cleanly.", "error", err)
			}
		}()
	}

	logger.Info("🚀 Launching scene...")
	if err := a.executor.Run(runCtx, p); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	logger.Info("🏁 Scene shut down.")
	return nil
}

// materialize generates the block layout and writes the model files of
// every block.
func (a *App) materialize(ctx context.Context) ([]plan.Object, error) {
	logger := ctxlog.FromContext(ctx)
	blocks := a.scene.Blocks
	if blocks == nil {
		logger.Info("Scene declares no generated blocks.")
		return nil, nil
	}

	cat, err := catalog.New(blocks.Catalog...)
	if err != nil {
		return nil, fmt.Errorf("invalid block catalog: %w", err)
	}
	opts := blocks.Placement
	if a.config.MaxAttempts >= 0 {
		opts.MaxAttempts = a.config.MaxAttempts
	}
	gen, err := placement.NewGenerator(opts, cat, blocks.Palette, a.rng)
	if err != nil {
		return nil, fmt.Errorf("invalid block layout: %w", err)
	}
	placements, err := gen.Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to place blocks: %w", err)
	}
	logger.Info("Block layout generated.", "seed", a.seed, "blocks", len(placements))

	tools, err := a.toolchain()
	if err != nil {
		return nil, err
	}
	pipe, err := modelpipe.New(modelpipe.Options{Template: blocks.Template, ModelsDir: blocks.ModelsDir}, tools)
	if err != nil {
		return nil, err
	}
	descriptors, err := pipe.MaterializeAll(ctx, placements)
	if err != nil {
		return nil, err
	}

	objects := make([]plan.Object, len(placements))
	for i, pl := range placements {
		objects[i] = plan.Object{Placement: pl, Descriptor: descriptors[i]}
	}
	return objects, nil
}

func (a *App) toolchain() (modelpipe.Toolchain, error) {
	if a.tools != nil {
		return a.tools, nil
	}
	tools, err := modelpipe.NewExecToolchain(modelpipe.DefaultToolNames())
	if err != nil {
		return nil, err
	}
	a.tools = tools
	return tools, nil
}

func (a *App) processLauncher() (executor.Launcher, error) {
	if a.launcher != nil {
		return a.launcher, nil
	}
	tools, err := a.toolchain()
	if err != nil {
		return nil, err
	}
	return executor.NewExecLauncher(tools, os.Stdout, os.Stderr)
}

func writePlanFile(path string, p *plan.Plan) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plan file: %w", err)
	}
	if err := p.WriteManifest(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
