package config

import (
	"github.com/vk/blockscene/internal/catalog"
	"github.com/vk/blockscene/internal/palette"
	"github.com/vk/blockscene/internal/placement"
	"github.com/vk/blockscene/internal/plan"
)

// Model is the unified, format-agnostic representation of a scene.
type Model struct {
	Package   Package
	Arguments []*ArgumentDefinition
	// Resolved holds the final value of every declared launch argument.
	Resolved map[string]string
	// Blocks is nil when the scene declares no generated blocks.
	Blocks  *Blocks
	Actions []*plan.Action
}

// Package identifies the package the scene ships in.
type Package struct {
	Name      string
	ShareDir  string
	ModelsDir string
}

// ArgumentDefinition declares a launch argument.
type ArgumentDefinition struct {
	Name        string
	Description string
	Choices     []string
	Default     *string
}

// Blocks configures block generation and model materialization.
type Blocks struct {
	Catalog   []catalog.Item
	Palette   []palette.Color
	Placement placement.Options
	Template  string
	ModelsDir string
}
