// internal/domain/reminder/policy.go
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidPolicy = errors.New("invalid reminder policy")

// Role distinguishes which stakeholder is notified about an entity.
type Role string

const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

// Entity is a due domain record as seen by the engine. The engine never
// modifies it.
type Entity interface {
	EntityID() string
	OwnerUserID() uuid.UUID
}

// Recipient is a resolved notification target for an entity.
type Recipient struct {
	Role      Role
	UserID    uuid.UUID
	Name      string
	ChannelID string
}

// IdempotencyKey identifies one (entity, recipient role) pair. Combined with a
// PeriodTag it admits at most one successful delivery.
type IdempotencyKey struct {
	EntityID string
	Role     Role
}

func (k IdempotencyKey) String() string { return k.EntityID + "/" + string(k.Role) }

// Window is the output of a WindowEvaluator for one tick.
type Window struct {
	ShouldQuery bool
	PeriodTag   PeriodTag
	Range       DateRange
}

// WindowEvaluator decides whether now is a trigger moment for a policy.
type WindowEvaluator interface {
	Evaluate(now time.Time) Window
}

// EntitySource finds the entities whose trigger date falls in r.
type EntitySource interface {
	FindDue(ctx context.Context, r DateRange) ([]Entity, error)
}

// RecipientResolver maps a due entity to its notification targets. An entity
// nobody can be notified about yields no recipients and no error. Resolve may
// return some recipients together with an error about lookups that failed.
type RecipientResolver interface {
	Resolve(ctx context.Context, e Entity) ([]Recipient, error)
}

// MessageFormatter renders the text sent to a recipient.
type MessageFormatter interface {
	Format(e Entity, r Recipient) (string, error)
}

// Notifier delivers a rendered message to a channel identifier. Any error
// means the message was not delivered.
type Notifier interface {
	Send(ctx context.Context, channelID, text string) error
}

// KeyFunc builds the idempotency key of an entity for a recipient role.
type KeyFunc func(e Entity, role Role) IdempotencyKey

// DefaultKey keys deliveries by entity id and recipient role.
func DefaultKey(e Entity, role Role) IdempotencyKey {
	return IdempotencyKey{EntityID: e.EntityID(), Role: role}
}

// Policy is the immutable description of one kind of reminder. It is built
// once at startup and shared by value.
type Policy struct {
	Name      string
	Cadence   time.Duration
	Window    WindowEvaluator
	Source    EntitySource
	Resolver  RecipientResolver
	Formatter MessageFormatter
	Key       KeyFunc // Optional, DefaultKey when nil
}

// Validate checks that every collaborator of the policy is set.
func (p Policy) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidPolicy)
	case p.Cadence <= 0:
		return fmt.Errorf("%w: %s: cadence must be positive", ErrInvalidPolicy, p.Name)
	case p.Window == nil:
		return fmt.Errorf("%w: %s: window evaluator is nil", ErrInvalidPolicy, p.Name)
	case p.Source == nil:
		return fmt.Errorf("%w: %s: entity source is nil", ErrInvalidPolicy, p.Name)
	case p.Resolver == nil:
		return fmt.Errorf("%w: %s: recipient resolver is nil", ErrInvalidPolicy, p.Name)
	case p.Formatter == nil:
		return fmt.Errorf("%w: %s: message formatter is nil", ErrInvalidPolicy, p.Name)
	}
	return nil
}

// KeyFor returns the idempotency key for e and role.
func (p Policy) KeyFor(e Entity, role Role) IdempotencyKey {
	if p.Key != nil {
		return p.Key(e, role)
	}
	return DefaultKey(e, role)
}
