// Package executor runs an assembled plan on the local machine.
//
// Every action gets its own goroutine that waits until each of its
// dependencies has reached the condition of the connecting edge:
//
//   - completed: an env action was applied, or a process exited as for exited;
//   - started: the dependency's process has been launched;
//   - exited: the dependency's process has exited cleanly, or a controller
//     action has exited with any status.
//
// Env actions are applied in-process to the environment handed to every
// process started afterwards. Everything else is started through a
// Launcher. The first failure of a non-controller action cancels the whole
// run: running processes are stopped and actions still waiting are skipped.
// A failed controller is only recorded. Cancellation of the caller's
// context is a normal shutdown and is not reported as an error.
package executor
