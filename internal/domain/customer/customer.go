package customer

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Customer is a shop customer record. UserID links it to the account that
// receives the birthday greeting.
type Customer struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	BirthDate sql.NullTime
	IsActive  bool
	CreatedAt time.Time
}

func (c *Customer) EntityID() string { return c.ID.String() }
func (c *Customer) OwnerUserID() uuid.UUID { return c.UserID }

// Repository defines the queries on customers used for birthday reminders.
type Repository interface {
	// ListByBirthday returns active customers born on the given month and day.
	// When includeLeapDay is set, customers born on February 29 are returned too.
	ListByBirthday(ctx context.Context, month time.Month, day int, includeLeapDay bool) ([]*Customer, error)
}
