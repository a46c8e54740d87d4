package config

import "context"

// LoadOptions carries the values that influence evaluation of a scene.
type LoadOptions struct {
	// Overrides are launch argument values given on the command line.
	Overrides map[string]string
	// ShareDir overrides the package share directory.
	ShareDir string
	// Share resolves the share directory of a package. Nil selects the
	// loader's default.
	Share ShareResolver
}

// ShareResolver maps a package name to its installed share directory.
type ShareResolver func(pkg string) (string, error)

// Loader is the interface for a format-specific scene loader.
type Loader interface {
	// Load reads the scene from paths, resolves launch arguments and
	// translates everything into the format-agnostic model. Without paths
	// the loader's built-in default scene is used.
	Load(ctx context.Context, opts LoadOptions, paths ...string) (*Model, error)
}
