package debt

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status of a customer debt.
type Status string

const (
	StatusPending Status = "pending"
	StatusOverdue Status = "overdue"
	StatusPaid    Status = "paid"
)

// Debt is an amount a user owes the shop, payable by DueDate.
type Debt struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	CustomerName string
	Amount       decimal.Decimal
	Currency     string
	DueDate      time.Time
	Status       Status
	CreatedAt    time.Time
}

func (d *Debt) EntityID() string { return d.ID.String() }
func (d *Debt) OwnerUserID() uuid.UUID { return d.UserID }

// Repository defines the queries on debts used for due-date reminders.
type Repository interface {
	// FindDue returns debts with from <= DueDate < to and a status in statuses,
	// ordered by due date.
	FindDue(ctx context.Context, from, to time.Time, statuses []Status) ([]*Debt, error)
}
