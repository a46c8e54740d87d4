// Package plan assembles the ordered startup plan of a scene.
//
// A plan is a set of actions plus a dependency graph whose edges carry the
// condition the dependent waits for: the dependency has completed (in-process
// actions such as environment changes), has started (long-running processes
// such as the simulator), or has exited (one-shot processes such as
// controller spawners). Assembly is pure: it performs no I/O and uses no
// randomness, so the same inputs always yield the same plan.
package plan
