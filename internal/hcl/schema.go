package hcl

import "github.com/hashicorp/hcl/v2"

// --- Phase 1: package identity and launch arguments ---

// fileRoot decodes the blocks that must be known before anything else is
// evaluated. Everything else is left in Remain for the second phase.
type fileRoot struct {
	Package   *packageBlock    `hcl:"package,block"`
	Arguments []*argumentBlock `hcl:"argument,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type packageBlock struct {
	Name  string `hcl:"name"`
	Share string `hcl:"share,optional"`
}

type argumentBlock struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	Choices     []string `hcl:"choices,optional"`
	Default     *string  `hcl:"default,optional"`
}

// --- Phase 2: everything evaluated against resolved arguments ---

type sceneBody struct {
	Blocks  *blocksBlock   `hcl:"blocks,block"`
	Envs    []*envBlock    `hcl:"env,block"`
	Actions []*actionBlock `hcl:"action,block"`
}

type blocksBlock struct {
	Types         []string      `hcl:"types,optional"`
	MinCount      *int          `hcl:"min_count,optional"`
	MaxCount      *int          `hcl:"max_count,optional"`
	Anchor        []float64     `hcl:"anchor,optional"`
	Jitter        []float64     `hcl:"jitter,optional"`
	SurfaceZ      *float64      `hcl:"surface_z,optional"`
	MinSeparation *float64      `hcl:"min_separation,optional"`
	MaxAttempts   *int          `hcl:"max_attempts,optional"`
	Template      string        `hcl:"template,optional"`
	ModelsDir     string        `hcl:"models_dir,optional"`
	Colors        []*colorBlock `hcl:"color,block"`
}

type colorBlock struct {
	Name string `hcl:"name,label"`
	RGBA string `hcl:"rgba"`
}

type envBlock struct {
	Name   string   `hcl:"name,label"`
	Values []string `hcl:"values"`
	Append *bool    `hcl:"append,optional"`
}

type actionBlock struct {
	Kind string `hcl:"kind,label"`
	ID   string `hcl:"id,label"`
	Role string `hcl:"role,optional"`

	Package    string            `hcl:"package,optional"`
	Executable string            `hcl:"executable,optional"`
	NodeName   string            `hcl:"node_name,optional"`
	Namespace  string            `hcl:"namespace,optional"`
	Arguments  []string          `hcl:"arguments,optional"`
	Parameters map[string]string `hcl:"parameters,optional"`

	LaunchFile      string            `hcl:"launch_file,optional"`
	LaunchArguments map[string]string `hcl:"launch_arguments,optional"`

	Entity      string            `hcl:"entity,optional"`
	File        string            `hcl:"file,optional"`
	Pose        *poseBlock        `hcl:"pose,block"`
	Description *descriptionBlock `hcl:"description,block"`

	DependsOn []string `hcl:"depends_on,optional"`
	OnExitOf  []string `hcl:"on_exit_of,optional"`
}

type poseBlock struct {
	X     float64 `hcl:"x,optional"`
	Y     float64 `hcl:"y,optional"`
	Z     float64 `hcl:"z,optional"`
	Roll  float64 `hcl:"roll,optional"`
	Pitch float64 `hcl:"pitch,optional"`
	Yaw   float64 `hcl:"yaw,optional"`
}

type descriptionBlock struct {
	Template  string            `hcl:"template"`
	Params    map[string]string `hcl:"params,optional"`
	Parameter string            `hcl:"parameter,optional"`
}
