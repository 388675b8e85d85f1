package spin

import "time"

// CPUTime is the processor time charged to a process.
type CPUTime struct {
	User   time.Duration
	System time.Duration
}

// Total returns user plus system time.
func (c CPUTime) Total() time.Duration {
	return c.User + c.System
}
