// internal/app/debt_policy.go
package app

import (
	"context"
	"fmt"
	"time"

	"retail_reminder_bot/internal/domain/debt"
	"retail_reminder_bot/internal/domain/reminder"
	"retail_reminder_bot/internal/domain/user"
)

const PolicyDebt = "debt"

const reminderDateLayout = "02.01.2006"

// DebtPolicyConfig configures the debt due-date reminder policy.
type DebtPolicyConfig struct {
	Cadence  time.Duration
	Statuses []debt.Status // e.g. pending, overdue
	Channel  user.Channel
	Location *time.Location // Zone used to print the due date
}

// NewDebtPolicy reminds debtors one day before their debt falls due.
func NewDebtPolicy(debts debt.Repository, users user.Repository, cfg DebtPolicyConfig) reminder.Policy {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return reminder.Policy{
		Name:      PolicyDebt,
		Cadence:   cfg.Cadence,
		Window:    DailyWindow{LeadDays: 1},
		Source:    debtSource{debts: debts, statuses: cfg.Statuses},
		Resolver:  OwnerResolver{Users: users, Channel: cfg.Channel},
		Formatter: debtFormatter{loc: loc},
	}
}

type debtSource struct {
	debts    debt.Repository
	statuses []debt.Status
}

func (s debtSource) FindDue(ctx context.Context, r reminder.DateRange) ([]reminder.Entity, error) {
	debts, err := s.debts.FindDue(ctx, r.Start, r.End, s.statuses)
	if err != nil {
		return nil, err
	}
	entities := make([]reminder.Entity, 0, len(debts))
	for _, d := range debts {
		entities = append(entities, d)
	}
	return entities, nil
}

type debtFormatter struct {
	loc *time.Location
}

func (f debtFormatter) Format(e reminder.Entity, rc reminder.Recipient) (string, error) {
	d, ok := e.(*debt.Debt)
	if !ok {
		return "", fmt.Errorf("debt formatter: unexpected entity type %T", e)
	}
	return fmt.Sprintf("Здравствуйте, %s! Напоминаем, что %s наступает срок оплаты долга: %s %s.",
		rc.Name, d.DueDate.In(f.loc).Format(reminderDateLayout), d.Amount.StringFixed(2), d.Currency), nil
}
