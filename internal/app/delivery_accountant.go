// internal/app/delivery_accountant.go
package app

import (
	"time"

	"retail_reminder_bot/internal/domain/reminder"

	"github.com/sirupsen/logrus"
)

// deliveryAccountant counts the deliveries of one tick and writes its single
// summary line.
type deliveryAccountant struct {
	logger  *logrus.Entry
	outcome reminder.Outcome
}

func newDeliveryAccountant(logger *logrus.Entry, policy string, startedAt time.Time) *deliveryAccountant {
	return &deliveryAccountant{
		logger:  logger,
		outcome: reminder.Outcome{Policy: policy, StartedAt: startedAt},
	}
}

func (a *deliveryAccountant) period(tag reminder.PeriodTag) { a.outcome.PeriodTag = tag }
func (a *deliveryAccountant) queried(due int) {
	a.outcome.Queried = true
	a.outcome.Due = due
}
func (a *deliveryAccountant) sent() { a.outcome.Sent++ }
func (a *deliveryAccountant) failed() { a.outcome.Failed++ }
func (a *deliveryAccountant) skipped() { a.outcome.Skipped++ }
func (a *deliveryAccountant) abort(err error) { a.outcome.Err = err }

// finish logs the summary of the tick and returns its outcome.
func (a *deliveryAccountant) finish(finishedAt time.Time) reminder.Outcome {
	a.outcome.Duration = finishedAt.Sub(a.outcome.StartedAt)
	o := a.outcome

	entry := a.logger.WithFields(logrus.Fields{
		"period":      o.PeriodTag,
		"due":         o.Due,
		"sent":        o.Sent,
		"failed":      o.Failed,
		"skipped":     o.Skipped,
		"duration_ms": o.Duration.Milliseconds(),
	})
	switch {
	case o.Err != nil:
		entry.WithError(o.Err).Error("Reminder tick aborted")
	case !o.Queried:
		entry.Debug("Reminder tick outside trigger window")
	default:
		entry.Infof("Reminder tick completed: %d sent, %d failed", o.Sent, o.Failed)
	}
	return o
}
