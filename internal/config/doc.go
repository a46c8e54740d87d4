// Package config defines the format-agnostic scene model of the
// application, along with the Loader interface implemented by concrete
// scene file formats.
//
// The config.Model is the single source of truth for the app package: the
// block layout settings feed the placement generator and the model
// pipeline, and the declared actions feed the plan assembler. Concrete
// implementations of the Loader, such as for HCL, are provided in separate
// packages.
package config
