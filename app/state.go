package app

import "fmt"

// State is the loop lifecycle: Running → Terminating → Terminated.
type State int

const (
	// Running executes full iterations.
	Running State = iota
	// Terminating is entered when a quit request is seen. The current
	// iteration finishes without player commands, then the loop exits.
	Terminating
	// Terminated means the window has been released. Terminal.
	Terminated
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Terminating:
		return "terminating"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}
