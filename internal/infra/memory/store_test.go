package memory

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"retail_reminder_bot/internal/domain/customer"
	"retail_reminder_bot/internal/domain/debt"
	"retail_reminder_bot/internal/domain/subscription"
	"retail_reminder_bot/internal/domain/user"
	idb "retail_reminder_bot/internal/infra/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	older := &user.User{ID: uuid.New(), Role: user.RoleAdmin, IsActive: true, CreatedAt: base,
		TelegramChatID: sql.NullString{String: "1", Valid: true}}
	newer := &user.User{ID: uuid.New(), Role: user.RoleAdmin, IsActive: true, CreatedAt: base.Add(time.Hour),
		TelegramChatID: sql.NullString{String: "2", Valid: true}}
	unreachable := &user.User{ID: uuid.New(), Role: user.RoleAdmin, IsActive: true, CreatedAt: base.Add(-time.Hour)}
	s.AddUser(newer)
	s.AddUser(older)
	s.AddUser(unreachable)

	got, err := s.Users().GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)

	_, err = s.Users().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, idb.ErrUserNotFound)

	admin, err := s.Users().FirstWithChannel(ctx, user.RoleAdmin, user.ChannelTelegram)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, older.ID, admin.ID)

	none, err := s.Users().FirstWithChannel(ctx, user.RoleAdmin, user.ChannelSMS)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestDebtRepositoryFindDue(t *testing.T) {
	s := NewStore()
	from := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	atStart := &debt.Debt{ID: uuid.New(), DueDate: from, Status: debt.StatusPending, Amount: decimal.NewFromInt(1)}
	atEnd := &debt.Debt{ID: uuid.New(), DueDate: to, Status: debt.StatusPending}
	paid := &debt.Debt{ID: uuid.New(), DueDate: from.Add(time.Hour), Status: debt.StatusPaid}
	overdue := &debt.Debt{ID: uuid.New(), DueDate: from.Add(2 * time.Hour), Status: debt.StatusOverdue}
	s.AddDebt(overdue)
	s.AddDebt(atStart)
	s.AddDebt(atEnd)
	s.AddDebt(paid)

	got, err := s.Debts().FindDue(context.Background(), from, to, []debt.Status{debt.StatusPending, debt.StatusOverdue})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, atStart.ID, got[0].ID)
	assert.Equal(t, overdue.ID, got[1].ID)
}

func TestSubscriptionRepositoryExcludesBlocked(t *testing.T) {
	s := NewStore()
	from := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)
	s.AddSubscription(&subscription.Subscription{ID: uuid.New(), Plan: subscription.PlanMetered, EndDate: from, IsBlocked: true})
	s.AddSubscription(&subscription.Subscription{ID: uuid.New(), Plan: subscription.PlanFixed, EndDate: from})
	open := &subscription.Subscription{ID: uuid.New(), Plan: subscription.PlanMetered, EndDate: from}
	s.AddSubscription(open)

	got, err := s.Subscriptions().FindExpiring(context.Background(), from, from.AddDate(0, 0, 1), subscription.PlanMetered)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)
}

func TestCustomerRepositoryLeapDay(t *testing.T) {
	s := NewStore()
	leap := &customer.Customer{ID: uuid.New(), IsActive: true,
		BirthDate: sql.NullTime{Time: time.Date(2000, time.February, 29, 0, 0, 0, 0, time.UTC), Valid: true}}
	regular := &customer.Customer{ID: uuid.New(), IsActive: true,
		BirthDate: sql.NullTime{Time: time.Date(1990, time.February, 28, 0, 0, 0, 0, time.UTC), Valid: true}}
	s.AddCustomer(leap)
	s.AddCustomer(regular)
	s.AddCustomer(&customer.Customer{ID: uuid.New(), IsActive: true})

	got, err := s.Customers().ListByBirthday(context.Background(), time.February, 28, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, regular.ID, got[0].ID)

	got, err = s.Customers().ListByBirthday(context.Background(), time.February, 28, true)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStoreFail(t *testing.T) {
	s := NewStore()
	boom := errors.New("connection refused")
	s.Fail(boom)

	_, err := s.Debts().FindDue(context.Background(), time.Now(), time.Now(), nil)
	assert.ErrorIs(t, err, boom)

	s.Fail(nil)
	_, err = s.Debts().FindDue(context.Background(), time.Now(), time.Now(), nil)
	assert.NoError(t, err)
}
