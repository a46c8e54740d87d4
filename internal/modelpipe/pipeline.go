package modelpipe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vk/blockscene/internal/ctxlog"
	"github.com/vk/blockscene/internal/placement"
)

// Options locates the template and the output directory and fixes the
// file extensions of the two generated descriptions.
type Options struct {
	Template        string
	ModelsDir       string
	IntermediateExt string
	FinalExt        string
	ClosingTag      string
	Fragment        string
}

// DefaultOptions returns the URDF/SDF layout under modelsDir, expanding
// modelsDir/block.urdf.xacro.
func DefaultOptions(modelsDir string) Options {
	return Options{
		Template:        filepath.Join(modelsDir, "block.urdf.xacro"),
		ModelsDir:       modelsDir,
		IntermediateExt: ".urdf",
		FinalExt:        ".sdf",
		ClosingTag:      ModelClosingTag,
		Fragment:        PosePublisherPlugin,
	}
}

// Descriptor records the files materialized for one block.
type Descriptor struct {
	Ordinal          int
	Name             string
	IntermediatePath string
	FinalPath        string
	// Intermediate is the expanded description text, published as the
	// block's robot_description.
	Intermediate string
}

// Pipeline materializes model files for placements.
type Pipeline struct {
	opts  Options
	tools Toolchain
}

// New creates a pipeline. Options left empty fall back to DefaultOptions.
func New(opts Options, tools Toolchain) (*Pipeline, error) {
	if tools == nil {
		return nil, fmt.Errorf("a toolchain is required")
	}
	if opts.ModelsDir == "" {
		return nil, fmt.Errorf("models directory is required")
	}
	def := DefaultOptions(opts.ModelsDir)
	if opts.Template == "" {
		opts.Template = def.Template
	}
	if opts.IntermediateExt == "" {
		opts.IntermediateExt = def.IntermediateExt
	}
	if opts.FinalExt == "" {
		opts.FinalExt = def.FinalExt
	}
	if opts.ClosingTag == "" {
		opts.ClosingTag = def.ClosingTag
	}
	if opts.Fragment == "" {
		opts.Fragment = def.Fragment
	}
	return &Pipeline{opts: opts, tools: tools}, nil
}

// Paths returns the intermediate and final file paths for an ordinal.
func (p *Pipeline) Paths(ordinal int) (intermediate, final string) {
	base := filepath.Join(p.opts.ModelsDir, fmt.Sprintf("block%d", ordinal))
	return base + p.opts.IntermediateExt, base + p.opts.FinalExt
}

// Materialize runs all stages for one placement. Existing files are
// overwritten. On failure nothing is cleaned up, and the final description
// is only written once every earlier stage succeeded.
func (p *Pipeline) Materialize(ctx context.Context, pl placement.Placement) (*Descriptor, error) {
	logger := ctxlog.FromContext(ctx).With("block", pl.Name())
	intermediatePath, finalPath := p.Paths(pl.Ordinal)

	params := []Param{
		{Key: "block_name", Value: strconv.Itoa(pl.Ordinal)},
		{Key: "block_type", Value: string(pl.Type)},
		{Key: "block_color", Value: pl.Color.RGBA},
	}
	intermediate, err := p.tools.Expand(ctx, p.opts.Template, params)
	if err != nil {
		return nil, fmt.Errorf("error generating description for %s: %w", pl.Name(), err)
	}
	if err := os.WriteFile(intermediatePath, []byte(intermediate), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", intermediatePath, err)
	}
	logger.Debug("Wrote intermediate description.", "path", intermediatePath, "bytes", len(intermediate))

	converted, err := p.tools.Convert(ctx, intermediatePath)
	if err != nil {
		return nil, fmt.Errorf("error converting description for %s: %w", pl.Name(), err)
	}
	lines := InjectBefore(SplitLines(converted), p.opts.ClosingTag, p.opts.Fragment)
	if err := os.WriteFile(finalPath, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", finalPath, err)
	}
	logger.Debug("Wrote final description.", "path", finalPath, "lines", len(lines))

	return &Descriptor{
		Ordinal:          pl.Ordinal,
		Name:             pl.Name(),
		IntermediatePath: intermediatePath,
		FinalPath:        finalPath,
		Intermediate:     intermediate,
	}, nil
}

// MaterializeAll processes placements in order and stops at the first error.
func (p *Pipeline) MaterializeAll(ctx context.Context, placements []placement.Placement) ([]*Descriptor, error) {
	logger := ctxlog.FromContext(ctx)
	if err := os.MkdirAll(p.opts.ModelsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare models directory: %w", err)
	}

	out := make([]*Descriptor, 0, len(placements))
	for _, pl := range placements {
		d, err := p.Materialize(ctx, pl)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	logger.Info("Block models materialized.", "count", len(out), "dir", p.opts.ModelsDir)
	return out, nil
}
