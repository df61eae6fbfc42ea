package app

import (
	"context"
	"time"

	"retail_reminder_bot/internal/domain/reminder"
)

// ReminderRunner is the part of the engine the admin surface drives.
type ReminderRunner interface {
	Tick(ctx context.Context, policy string) (reminder.Outcome, error)
	LastOutcomes() []reminder.Outcome
}

// AdminService exposes the reminder engine to the configured operator.
type AdminService struct {
	runner          ReminderRunner
	adminTelegramID int64
	tickTimeout     time.Duration
}

// NewAdminService returns a service whose manual runs are bounded by
// tickTimeout, the same deadline scheduled ticks get.
func NewAdminService(runner ReminderRunner, adminID int64, tickTimeout time.Duration) *AdminService {
	return &AdminService{
		runner:          runner,
		adminTelegramID: adminID,
		tickTimeout:     tickTimeout,
	}
}

func (s *AdminService) authorize(performingAdminID int64) error {
	if s.adminTelegramID == 0 || performingAdminID != s.adminTelegramID {
		return ErrAdminNotAuthorized
	}
	return nil
}

// Status returns the latest outcome of every policy that has ticked.
func (s *AdminService) Status(performingAdminID int64) ([]reminder.Outcome, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	return s.runner.LastOutcomes(), nil
}

// RunNow triggers an immediate tick of policy. It goes through the same
// non-reentrant runner as the scheduler, so it never overlaps a running tick.
func (s *AdminService) RunNow(ctx context.Context, performingAdminID int64, policy string) (reminder.Outcome, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return reminder.Outcome{}, err
	}
	if s.tickTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.tickTimeout)
		defer cancel()
	}
	return s.runner.Tick(ctx, policy)
}
