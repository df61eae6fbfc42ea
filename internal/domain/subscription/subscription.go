package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Plan is the billing plan of a shop subscription.
type Plan string

const (
	PlanMetered Plan = "metered"
	PlanFixed   Plan = "fixed"
)

// Subscription is a user's paid access to the POS, active until EndDate.
type Subscription struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	UserName  string // Joined from the subscriber's user record
	Plan      Plan
	EndDate   time.Time
	IsBlocked bool
	CreatedAt time.Time
}

func (s *Subscription) EntityID() string { return s.ID.String() }
func (s *Subscription) OwnerUserID() uuid.UUID { return s.UserID }

// Repository defines the queries on subscriptions used for expiry reminders.
type Repository interface {
	// FindExpiring returns subscriptions on plan that are not blocked and
	// whose EndDate falls in [from, to), ordered by end date.
	FindExpiring(ctx context.Context, from, to time.Time, plan Plan) ([]*Subscription, error)
}
