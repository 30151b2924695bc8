package combat

import "fmt"

// OutcomeStatus classifies the state of a battle.
type OutcomeStatus int

const (
	// Ongoing means two or more factions still have living members.
	Ongoing OutcomeStatus = iota
	// Won means exactly one faction has living members.
	Won
	// Draw means no faction has living members.
	Draw
)

// String returns a human-readable status label.
func (s OutcomeStatus) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case Won:
		return "won"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status as its label.
func (s OutcomeStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a label written by MarshalText.
func (s *OutcomeStatus) UnmarshalText(text []byte) error {
	for _, st := range []OutcomeStatus{Ongoing, Won, Draw} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown outcome status %q", text)
}

// Outcome is the result of evaluating faction liveness.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	// Winner is the winning faction index when Status == Won, otherwise -1.
	Winner int `json:"winner"`
	// Alive lists the factions with at least one living member, ascending.
	Alive []int `json:"alive"`
}

// EvaluateOutcome classifies the battle. It has no side effects.
//
// Postcondition: Won iff exactly one faction is alive; Draw iff none; Ongoing otherwise.
func EvaluateOutcome(sides []*Roster) Outcome {
	alive := []int{}
	for i, r := range sides {
		if r.Alive() {
			alive = append(alive, i)
		}
	}
	switch len(alive) {
	case 0:
		return Outcome{Status: Draw, Winner: -1, Alive: alive}
	case 1:
		return Outcome{Status: Won, Winner: alive[0], Alive: alive}
	default:
		return Outcome{Status: Ongoing, Winner: -1, Alive: alive}
	}
}
