package app

import (
	"context"
	"testing"
	"time"

	"retail_reminder_bot/internal/domain/reminder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminID int64 = 777

func newTestAdminService(t *testing.T, adminID int64) (*AdminService, *fakeNotifier) {
	t.Helper()
	logger, _ := newTestLogger()
	notifier := newFakeNotifier()
	clock := newFakeClock(time.Date(2026, time.October, 14, 10, 0, 0, 0, time.UTC))
	p := staticPolicy(&staticSource{entities: []reminder.Entity{testEntity("debt-1")}})
	p.Name = PolicyDebt
	runner, err := NewPolicyRunner(p, NewIdempotencyCache(), notifier, logger, WithClock(clock.Now))
	require.NoError(t, err)
	engine, err := NewReminderEngine(runner)
	require.NoError(t, err)
	return NewAdminService(engine, adminID, time.Second), notifier
}

func TestAdminService_RunNowAndStatus(t *testing.T) {
	svc, notifier := newTestAdminService(t, testAdminID)

	outcomes, err := svc.Status(testAdminID)
	require.NoError(t, err)
	assert.Empty(t, outcomes)

	outcome, err := svc.RunNow(context.Background(), testAdminID, PolicyDebt)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Sent)
	assert.Len(t, notifier.Sent(), 1)

	// A manual rerun in the same period does not send twice.
	outcome, err = svc.RunNow(context.Background(), testAdminID, PolicyDebt)
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.Sent)
	assert.Equal(t, 1, outcome.Skipped)

	outcomes, err = svc.Status(testAdminID)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, PolicyDebt, outcomes[0].Policy)
}

func TestAdminService_Authorization(t *testing.T) {
	svc, notifier := newTestAdminService(t, testAdminID)

	_, err := svc.RunNow(context.Background(), 12345, PolicyDebt)
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)
	_, err = svc.Status(12345)
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)
	assert.Equal(t, 0, notifier.Attempts())

	disabled, _ := newTestAdminService(t, 0)
	_, err = disabled.Status(0)
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)
}

func TestAdminService_UnknownPolicy(t *testing.T) {
	svc, _ := newTestAdminService(t, testAdminID)
	_, err := svc.RunNow(context.Background(), testAdminID, "loyalty")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

// stallingSource blocks until the tick context is done.
type stallingSource struct{}

func (stallingSource) FindDue(ctx context.Context, _ reminder.DateRange) ([]reminder.Entity, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestAdminService_RunNowIsBoundedByTickTimeout(t *testing.T) {
	logger, _ := newTestLogger()
	clock := newFakeClock(time.Date(2026, time.October, 14, 10, 0, 0, 0, time.UTC))
	p := staticPolicy(&staticSource{})
	p.Name = PolicyDebt
	p.Source = stallingSource{}
	runner, err := NewPolicyRunner(p, NewIdempotencyCache(), newFakeNotifier(), logger, WithClock(clock.Now))
	require.NoError(t, err)
	engine, err := NewReminderEngine(runner)
	require.NoError(t, err)
	svc := NewAdminService(engine, testAdminID, 50*time.Millisecond)

	done := make(chan reminder.Outcome, 1)
	go func() {
		o, _ := svc.RunNow(context.Background(), testAdminID, PolicyDebt)
		done <- o
	}()

	var manual reminder.Outcome
	select {
	case manual = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("manual run did not stop at the tick timeout")
	}
	assert.ErrorIs(t, manual.Err, ErrStoreUnavailable)
	assert.ErrorIs(t, manual.Err, context.DeadlineExceeded)

	// The guard is free again for the next scheduled tick.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = engine.Tick(ctx, PolicyDebt)
	assert.NotErrorIs(t, err, ErrTickInProgress)
}
