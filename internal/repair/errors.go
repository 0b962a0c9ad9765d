package repair

import "fmt"

// StrictModeError is the one fatal condition the engine raises. In strict
// mode, every anomaly that would otherwise trigger a logged repair instead
// raises a StrictModeError carrying the cursor offset (in runes from the
// start of input) where the anomaly was detected and a short reason.
type StrictModeError struct {
	Offset int
	Reason string
}

func (e *StrictModeError) Error() string {
	return fmt.Sprintf("json repair: strict mode: %s (at offset %d)", e.Reason, e.Offset)
}

func strictErr(cur *cursor, reason string) error {
	return &StrictModeError{Offset: cur.index, Reason: reason}
}
