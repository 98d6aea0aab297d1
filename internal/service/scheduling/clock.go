package scheduling

import "time"

// Clock is injected so "cannot book in the past" and template-active
// checks are deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
