package executor

// State represents the runtime state of an action.
type State int32

const (
	// Pending indicates the action is waiting for its dependencies.
	Pending State = iota
	// Running indicates the action's process has been started.
	Running
	// Exited indicates the action finished cleanly. Applied env actions
	// end up here too.
	Exited
	// Failed indicates the action could not be started or exited with an
	// error.
	Failed
	// Skipped indicates the run ended before the action's dependencies
	// were met.
	Skipped
	// Stopped indicates the process was terminated because the run ended.
	Stopped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Exited:
		return "exited"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// ActionStatus is a point-in-time view of one action.
type ActionStatus struct {
	ID    string
	State State
	Err   error
}
