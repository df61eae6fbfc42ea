package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the read operations the reminder engine needs on users.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FirstWithChannel returns the oldest active user with the given role that
	// can be reached on ch. It returns (nil, nil) when there is none.
	FirstWithChannel(ctx context.Context, role Role, ch Channel) (*User, error)
}
