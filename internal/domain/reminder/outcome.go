package reminder

import (
	"fmt"
	"time"
)

// Outcome summarizes one tick of a policy. It is transient: logged, kept as
// the latest status and then replaced by the next tick.
type Outcome struct {
	Policy    string
	PeriodTag PeriodTag
	Queried   bool // The window was open and the store was asked
	Due       int  // Entities returned by the store
	Sent      int
	Failed    int
	Skipped   int // Already sent this period, or nobody to notify
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

func (o Outcome) String() string {
	s := fmt.Sprintf("%s [%s]: due=%d sent=%d failed=%d skipped=%d", o.Policy, o.PeriodTag, o.Due, o.Sent, o.Failed, o.Skipped)
	if !o.Queried && o.Err == nil {
		s += " (outside window)"
	}
	if o.Err != nil {
		s += " error: " + o.Err.Error()
	}
	return s
}
