// Package modelpipe turns a block placement into the on-disk model files the
// simulator consumes.
//
// Each block passes through three stages: the parameterized xacro template
// is expanded into an intermediate URDF description, the URDF is converted
// into SDF by the gz tool, and a fixed pose publisher plugin fragment is
// spliced into the SDF before the closing model tag. The two external tools
// are reached through the Toolchain interface so the pipeline can run
// against fakes in tests.
package modelpipe
