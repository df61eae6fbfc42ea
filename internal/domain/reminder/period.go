// internal/domain/reminder/period.go
package reminder

import "time"

const (
	dateLayout = "2006-01-02"
	hourLayout = "2006-01-02T15"
)

// PeriodTag captures the deduplication granularity of a policy: a calendar
// date ("2006-01-02") or a date plus hour bucket ("2006-01-02T15").
type PeriodTag string

// DateTag returns the date-only period tag for t.
func DateTag(t time.Time) PeriodTag { return PeriodTag(t.Format(dateLayout)) }

// HourTag returns the date+hour period tag for t.
func HourTag(t time.Time) PeriodTag { return PeriodTag(t.Format(hourLayout)) }

// Date returns the date component of the tag.
func (p PeriodTag) Date() string {
	if len(p) < len(dateLayout) {
		return string(p)
	}
	return string(p[:len(dateLayout)])
}

func (p PeriodTag) String() string { return string(p) }

// DateRange is the half-open interval [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether Start <= t < End.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// DayRange returns the range covering the calendar day that starts offset
// days after t's day. Calendar arithmetic keeps DST days correct.
func DayRange(t time.Time, offset int) DateRange {
	start := StartOfDay(t).AddDate(0, 0, offset)
	return DateRange{Start: start, End: start.AddDate(0, 0, 1)}
}
