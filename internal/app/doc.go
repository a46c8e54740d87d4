// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the launch lifecycle: load the scene,
// generate and materialize the blocks, assemble the plan, then either write
// the plan out (dry run) or execute it. It is decoupled from any specific
// entrypoint like a CLI.
package app
