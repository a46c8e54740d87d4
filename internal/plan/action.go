package plan

import (
	"fmt"
	"slices"

	"github.com/vk/blockscene/internal/placement"
)

// Kind selects how an action is carried out.
type Kind string

const (
	// KindEnv changes the environment of every process started afterwards.
	KindEnv Kind = "env"
	// KindNode runs an executable from a package (ros2 run).
	KindNode Kind = "node"
	// KindInclude runs a launch file from a package (ros2 launch).
	KindInclude Kind = "include"
	// KindSpawn creates an entity inside the running simulator.
	KindSpawn Kind = "spawn"
)

// Role marks actions the assembler treats specially.
type Role string

const (
	RoleNone       Role = ""
	RoleSimulator  Role = "simulator"
	RoleController Role = "controller"
	RoleVisualizer Role = "visualizer"
)

// Condition is what a dependent action waits for on its dependency.
type Condition string

const (
	Completed Condition = "completed"
	Started   Condition = "started"
	Exited    Condition = "exited"
)

// EnvChange sets or appends to an environment variable. Values are joined
// with the OS path list separator.
type EnvChange struct {
	Name   string
	Values []string
	Append bool
}

// Description is a robot description produced by template expansion when
// the action is launched. Parameter names the node parameter receiving it;
// spawn actions pass it as the entity string instead.
type Description struct {
	Template  string
	Params    map[string]string
	Parameter string
}

// Action is one step of the startup plan.
type Action struct {
	ID   string
	Kind Kind
	Role Role

	Package    string
	Executable string
	NodeName   string
	Namespace  string
	Arguments  []string
	Parameters map[string]string

	LaunchFile      string
	LaunchArguments map[string]string

	Entity      string
	File        string
	Pose        *placement.Pose
	Description *Description

	Env *EnvChange

	DependsOn []string
	OnExitOf  []string

	// UsesArguments lists the launch arguments the action's fields were
	// computed from.
	UsesArguments []string
}

// Dependency is a resolved edge into an action.
type Dependency struct {
	Action    string
	Condition Condition
}

// Validate checks the fields required by the action's kind.
func (a *Action) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("action id must not be empty")
	}
	switch a.Role {
	case RoleNone, RoleSimulator, RoleController, RoleVisualizer:
	default:
		return fmt.Errorf("action %q: unknown role %q", a.ID, a.Role)
	}

	switch a.Kind {
	case KindEnv:
		if a.Env == nil || a.Env.Name == "" {
			return fmt.Errorf("action %q: env action requires a variable name", a.ID)
		}
	case KindNode:
		if a.Package == "" || a.Executable == "" {
			return fmt.Errorf("action %q: node action requires package and executable", a.ID)
		}
	case KindInclude:
		if a.Package == "" || a.LaunchFile == "" {
			return fmt.Errorf("action %q: include action requires package and launch_file", a.ID)
		}
	case KindSpawn:
		if a.Entity == "" {
			return fmt.Errorf("action %q: spawn action requires an entity name", a.ID)
		}
		if (a.File == "") == (a.Description == nil) {
			return fmt.Errorf("action %q: spawn action requires exactly one of file or description", a.ID)
		}
	default:
		return fmt.Errorf("action %q: unknown kind %q", a.ID, a.Kind)
	}

	if a.Description != nil && a.Description.Template == "" {
		return fmt.Errorf("action %q: description requires a template", a.ID)
	}
	if a.Description != nil && a.Kind == KindNode && a.Description.Parameter == "" {
		return fmt.Errorf("action %q: node description requires a parameter name", a.ID)
	}
	if a.Role == RoleVisualizer && len(a.OnExitOf) == 0 {
		return fmt.Errorf("action %q: visualizer must wait on the exit of a controller action (on_exit_of)", a.ID)
	}
	return nil
}

// Clone returns a deep copy of the action.
func (a *Action) Clone() *Action {
	c := *a
	c.Arguments = slices.Clone(a.Arguments)
	c.Parameters = cloneMap(a.Parameters)
	c.LaunchArguments = cloneMap(a.LaunchArguments)
	c.DependsOn = slices.Clone(a.DependsOn)
	c.OnExitOf = slices.Clone(a.OnExitOf)
	c.UsesArguments = slices.Clone(a.UsesArguments)
	if a.Pose != nil {
		p := *a.Pose
		c.Pose = &p
	}
	if a.Description != nil {
		d := *a.Description
		d.Params = cloneMap(a.Description.Params)
		c.Description = &d
	}
	if a.Env != nil {
		e := *a.Env
		e.Values = slices.Clone(a.Env.Values)
		c.Env = &e
	}
	return &c
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
