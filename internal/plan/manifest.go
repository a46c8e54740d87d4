package plan

import (
	"fmt"
	"io"

	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"
)

// Manifest is the serializable form of a plan.
type Manifest struct {
	Session   string            `yaml:"session"`
	Arguments map[string]string `yaml:"arguments,omitempty"`
	Actions   []ManifestAction  `yaml:"actions"`
}

// ManifestAction describes one action in start order.
type ManifestAction struct {
	ID            string               `yaml:"id"`
	Kind          Kind                 `yaml:"kind"`
	Role          Role                 `yaml:"role,omitempty"`
	Command       string               `yaml:"command,omitempty"`
	Env           *ManifestEnv         `yaml:"env,omitempty"`
	Description   string               `yaml:"description_template,omitempty"`
	After         []ManifestDependency `yaml:"after,omitempty"`
	UsesArguments []string             `yaml:"uses_arguments,omitempty"`
}

// ManifestEnv is the serializable form of an environment change.
type ManifestEnv struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
	Append bool     `yaml:"append,omitempty"`
}

// ManifestDependency is one incoming edge.
type ManifestDependency struct {
	Action    string    `yaml:"action"`
	Condition Condition `yaml:"condition"`
}

// descriptionPlaceholder stands in for descriptions that are only expanded
// when the action is launched.
const descriptionPlaceholder = "<expanded at launch>"

// Manifest builds the serializable form of the plan.
func (p *Plan) Manifest() *Manifest {
	m := &Manifest{
		Session:   p.SessionID,
		Arguments: p.Arguments,
		Actions:   make([]ManifestAction, 0, len(p.order)),
	}
	for _, a := range p.order {
		ma := ManifestAction{
			ID:            a.ID,
			Kind:          a.Kind,
			Role:          a.Role,
			UsesArguments: a.UsesArguments,
		}
		if argv := CommandLine(a, descriptionPlaceholder); argv != nil {
			ma.Command = shellquote.Join(append([]string{Ros2}, argv...)...)
		}
		if a.Env != nil {
			ma.Env = &ManifestEnv{Name: a.Env.Name, Values: a.Env.Values, Append: a.Env.Append}
		}
		if a.Description != nil {
			ma.Description = a.Description.Template
		}
		for _, d := range p.Dependencies(a.ID) {
			ma.After = append(ma.After, ManifestDependency{Action: d.Action, Condition: d.Condition})
		}
		m.Actions = append(m.Actions, ma)
	}
	return m
}

// WriteManifest encodes the plan as YAML.
func (p *Plan) WriteManifest(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p.Manifest()); err != nil {
		return fmt.Errorf("failed to encode plan manifest: %w", err)
	}
	return enc.Close()
}
