package convert

import "fmt"

//go:generate go tool stringer -type=State -linecomment -output=state_string.go

// State is the progress of one pack through a conversion run.
type State int

const (
	StatePending     State = iota // pending
	StateCopied                   // copied
	StateDiscovered               // discovered
	StateConciliated              // conciliated
	StateReplaced                 // replaced
	StateCleaned                  // cleaned
	StateFailed                   // failed
)

// MarshalText renders the state by name in reports.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for v := StatePending; v <= StateFailed; v++ {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}

	return fmt.Errorf("unknown pack state %q", text)
}
