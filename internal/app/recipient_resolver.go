// internal/app/recipient_resolver.go
package app

import (
	"context"
	"errors"
	"fmt"

	"retail_reminder_bot/internal/domain/reminder"
	"retail_reminder_bot/internal/domain/user"
	idb "retail_reminder_bot/internal/infra/database"
)

// OwnerResolver notifies the user that owns the entity.
type OwnerResolver struct {
	Users   user.Repository
	Channel user.Channel
}

func (r OwnerResolver) Resolve(ctx context.Context, e reminder.Entity) ([]reminder.Recipient, error) {
	rc, err := resolveOwner(ctx, r.Users, r.Channel, e)
	if err != nil || rc == nil {
		return nil, err
	}
	return []reminder.Recipient{*rc}, nil
}

// OwnerAndAdminResolver notifies the owner of the entity and, separately, the
// first administrator reachable on the channel. The two lookups are
// independent: one failing does not drop the other. An administrator who owns
// the entity gets only the owner message.
type OwnerAndAdminResolver struct {
	Users   user.Repository
	Channel user.Channel
}

func (r OwnerAndAdminResolver) Resolve(ctx context.Context, e reminder.Entity) ([]reminder.Recipient, error) {
	var recipients []reminder.Recipient
	var errs []error

	owner, err := resolveOwner(ctx, r.Users, r.Channel, e)
	if err != nil {
		errs = append(errs, err)
	} else if owner != nil {
		recipients = append(recipients, *owner)
	}

	admin, err := r.Users.FirstWithChannel(ctx, user.RoleAdmin, r.Channel)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("failed to look up administrator: %w", err))
	case admin != nil && admin.ID != e.OwnerUserID():
		if addr := admin.Address(r.Channel); addr != "" {
			recipients = append(recipients, reminder.Recipient{
				Role:      reminder.RoleAdmin,
				UserID:    admin.ID,
				Name:      admin.Name,
				ChannelID: addr,
			})
		}
	}

	return recipients, errors.Join(errs...)
}

// resolveOwner returns nil without error when the owner does not exist, is
// inactive, or cannot be reached on ch.
func resolveOwner(ctx context.Context, users user.Repository, ch user.Channel, e reminder.Entity) (*reminder.Recipient, error) {
	u, err := users.GetByID(ctx, e.OwnerUserID())
	if err != nil {
		if errors.Is(err, idb.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up owner %s: %w", e.OwnerUserID(), err)
	}
	if !u.IsActive {
		return nil, nil
	}
	addr := u.Address(ch)
	if addr == "" {
		return nil, nil
	}
	return &reminder.Recipient{
		Role:      reminder.RoleOwner,
		UserID:    u.ID,
		Name:      u.Name,
		ChannelID: addr,
	}, nil
}
