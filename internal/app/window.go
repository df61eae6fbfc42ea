// internal/app/window.go
package app

import (
	"slices"
	"time"

	"retail_reminder_bot/internal/domain/reminder"
)

// HourBucketWindow opens for the first Grace of each listed hour. The period
// tag carries the hour, so every bucket of a day is deduplicated on its own.
type HourBucketWindow struct {
	Hours []int
	Grace time.Duration
}

func (w HourBucketWindow) Evaluate(now time.Time) reminder.Window {
	sinceHour := time.Duration(now.Minute())*time.Minute + time.Duration(now.Second())*time.Second
	open := slices.Contains(w.Hours, now.Hour()) && sinceHour < w.Grace
	return reminder.Window{
		ShouldQuery: open,
		PeriodTag:   reminder.HourTag(now),
		Range:       reminder.DayRange(now, 0),
	}
}

// DailyWindow queries on every tick for entities due LeadDays after today.
// Deduplication relies on the idempotency cache, keyed by date.
type DailyWindow struct {
	LeadDays int
}

func (w DailyWindow) Evaluate(now time.Time) reminder.Window {
	return reminder.Window{
		ShouldQuery: true,
		PeriodTag:   reminder.DateTag(now),
		Range:       reminder.DayRange(now, w.LeadDays),
	}
}
