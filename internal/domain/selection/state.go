package selection

import "fmt"

// State is the selection lifecycle of one session.
type State int

const (
	// Idle is the state right after reset: no tag edited, no choice.
	Idle State = iota
	// Filtering means the required tag set has been edited at least once.
	Filtering
	// Resolved is terminal: the choice is set.
	Resolved
)

// String returns the wire spelling of the state.
func (s State) String() string {
	switch s {
	case Filtering:
		return "filtering"
	case Resolved:
		return "resolved"
	default:
		return "idle"
	}
}

// ParseState parses the output of State.String.
func ParseState(s string) (State, error) {
	switch s {
	case "idle":
		return Idle, nil
	case "filtering":
		return Filtering, nil
	case "resolved":
		return Resolved, nil
	default:
		return Idle, fmt.Errorf("unknown selection state %q", s)
	}
}
