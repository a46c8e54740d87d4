package hcl

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/vk/blockscene/internal/catalog"
	"github.com/vk/blockscene/internal/config"
	"github.com/vk/blockscene/internal/palette"
	"github.com/vk/blockscene/internal/placement"
	"github.com/vk/blockscene/internal/plan"
)

// EnvActionID is the action id given to an env block.
func EnvActionID(variable string) string {
	return "env." + variable
}

// translateArgument converts an argument block into the agnostic model.
func translateArgument(a *argumentBlock) *config.ArgumentDefinition {
	def := &config.ArgumentDefinition{
		Name:        a.Name,
		Description: a.Description,
		Choices:     slices.Clone(a.Choices),
	}
	if a.Default != nil {
		v := *a.Default
		def.Default = &v
	}
	return def
}

// mergeScene translates the second-phase blocks of one file into model.
func mergeScene(model *config.Model, body *sceneBody, uses map[string][]string) error {
	if body.Blocks != nil {
		if model.Blocks != nil {
			return fmt.Errorf("duplicate blocks block: only one blocks block is allowed per scene")
		}
		b, err := translateBlocks(body.Blocks, model.Package.ModelsDir)
		if err != nil {
			return err
		}
		model.Blocks = b
	}
	for _, e := range body.Envs {
		model.Actions = append(model.Actions, translateEnv(e, uses))
	}
	for _, a := range body.Actions {
		action, err := translateAction(a, uses)
		if err != nil {
			return err
		}
		model.Actions = append(model.Actions, action)
	}
	return nil
}

// translateBlocks fills unset layout settings from the built-in desk layout.
func translateBlocks(b *blocksBlock, modelsDir string) (*config.Blocks, error) {
	opts := placement.DefaultOptions()
	if b.MinCount != nil {
		opts.MinCount = *b.MinCount
	}
	if b.MaxCount != nil {
		opts.MaxCount = *b.MaxCount
	}
	if b.Anchor != nil {
		if len(b.Anchor) != 2 {
			return nil, fmt.Errorf("blocks: anchor must have exactly 2 elements [x, y], got %d", len(b.Anchor))
		}
		opts.AnchorX, opts.AnchorY = b.Anchor[0], b.Anchor[1]
	}
	if b.Jitter != nil {
		if len(b.Jitter) != 2 {
			return nil, fmt.Errorf("blocks: jitter must have exactly 2 elements [x, y], got %d", len(b.Jitter))
		}
		opts.JitterX, opts.JitterY = b.Jitter[0], b.Jitter[1]
	}
	if b.SurfaceZ != nil {
		opts.SurfaceZ = *b.SurfaceZ
	}
	if b.MinSeparation != nil {
		opts.MinSeparation = *b.MinSeparation
	}
	if b.MaxAttempts != nil {
		opts.MaxAttempts = *b.MaxAttempts
	}

	items := catalog.Default().Items()
	if b.Types != nil {
		items = make([]catalog.Item, len(b.Types))
		for i, t := range b.Types {
			items[i] = catalog.Item(t)
		}
	}
	if _, err := catalog.New(items...); err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}

	colors := slices.Clone(palette.Default)
	if len(b.Colors) > 0 {
		colors = make([]palette.Color, len(b.Colors))
		for i, c := range b.Colors {
			colors[i] = palette.Color{Name: c.Name, RGBA: c.RGBA}
		}
	}
	if err := palette.Validate(colors); err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}

	out := &config.Blocks{
		Catalog:   items,
		Palette:   colors,
		Placement: opts,
		Template:  b.Template,
		ModelsDir: b.ModelsDir,
	}
	if out.ModelsDir == "" {
		out.ModelsDir = modelsDir
	}
	if out.Template == "" {
		out.Template = filepath.Join(out.ModelsDir, "block.urdf.xacro")
	}
	return out, nil
}

func translateEnv(e *envBlock, uses map[string][]string) *plan.Action {
	id := EnvActionID(e.Name)
	appendValue := true
	if e.Append != nil {
		appendValue = *e.Append
	}
	return &plan.Action{
		ID:   id,
		Kind: plan.KindEnv,
		Env: &plan.EnvChange{
			Name:   e.Name,
			Values: slices.Clone(e.Values),
			Append: appendValue,
		},
		UsesArguments: slices.Clone(uses[id]),
	}
}

func translateAction(a *actionBlock, uses map[string][]string) (*plan.Action, error) {
	kind := plan.Kind(a.Kind)
	switch kind {
	case plan.KindNode, plan.KindInclude, plan.KindSpawn:
	default:
		return nil, fmt.Errorf("action %q: unsupported kind %q (expected node, include or spawn)", a.ID, a.Kind)
	}

	action := &plan.Action{
		ID:              a.ID,
		Kind:            kind,
		Role:            plan.Role(a.Role),
		Package:         a.Package,
		Executable:      a.Executable,
		NodeName:        a.NodeName,
		Namespace:       a.Namespace,
		Arguments:       a.Arguments,
		Parameters:      a.Parameters,
		LaunchFile:      a.LaunchFile,
		LaunchArguments: a.LaunchArguments,
		Entity:          a.Entity,
		File:            a.File,
		DependsOn:       a.DependsOn,
		OnExitOf:        a.OnExitOf,
		UsesArguments:   slices.Clone(uses[a.ID]),
	}
	if a.Pose != nil {
		action.Pose = &placement.Pose{
			X:     placement.FormatFloat(a.Pose.X),
			Y:     placement.FormatFloat(a.Pose.Y),
			Z:     placement.FormatFloat(a.Pose.Z),
			Roll:  placement.FormatFloat(a.Pose.Roll),
			Pitch: placement.FormatFloat(a.Pose.Pitch),
			Yaw:   placement.FormatFloat(a.Pose.Yaw),
		}
	}
	if a.Description != nil {
		action.Description = &plan.Description{
			Template:  a.Description.Template,
			Params:    a.Description.Params,
			Parameter: a.Description.Parameter,
		}
	}
	if err := action.Validate(); err != nil {
		return nil, err
	}
	return action, nil
}
