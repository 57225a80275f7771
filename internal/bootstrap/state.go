package bootstrap

// State is a step of a bootstrap run.
type State int

const (
	StateInit State = iota
	StateRolesWritten
	StatePasswordWritten
	StateHealthVerified
	StateActionRunning
	StateCleaningUp
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateRolesWritten:
		return "ROLES_WRITTEN"
	case StatePasswordWritten:
		return "PASSWORD_WRITTEN"
	case StateHealthVerified:
		return "HEALTH_VERIFIED"
	case StateActionRunning:
		return "ACTION_RUNNING"
	case StateCleaningUp:
		return "CLEANING_UP"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}
