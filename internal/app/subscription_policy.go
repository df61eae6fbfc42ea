// internal/app/subscription_policy.go
package app

import (
	"context"
	"fmt"
	"time"

	"retail_reminder_bot/internal/domain/reminder"
	"retail_reminder_bot/internal/domain/subscription"
	"retail_reminder_bot/internal/domain/user"
)

const PolicySubscription = "subscription"

// SubscriptionPolicyConfig configures the subscription expiry policy.
type SubscriptionPolicyConfig struct {
	Cadence  time.Duration
	Plan     subscription.Plan
	Channel  user.Channel
	Location *time.Location
}

// NewSubscriptionPolicy warns subscribers, and the first administrator, one
// day before a subscription on the configured plan expires.
func NewSubscriptionPolicy(subs subscription.Repository, users user.Repository, cfg SubscriptionPolicyConfig) reminder.Policy {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return reminder.Policy{
		Name:      PolicySubscription,
		Cadence:   cfg.Cadence,
		Window:    DailyWindow{LeadDays: 1},
		Source:    subscriptionSource{subs: subs, plan: cfg.Plan},
		Resolver:  OwnerAndAdminResolver{Users: users, Channel: cfg.Channel},
		Formatter: subscriptionFormatter{loc: loc},
	}
}

type subscriptionSource struct {
	subs subscription.Repository
	plan subscription.Plan
}

func (s subscriptionSource) FindDue(ctx context.Context, r reminder.DateRange) ([]reminder.Entity, error) {
	subs, err := s.subs.FindExpiring(ctx, r.Start, r.End, s.plan)
	if err != nil {
		return nil, err
	}
	entities := make([]reminder.Entity, 0, len(subs))
	for _, sub := range subs {
		entities = append(entities, sub)
	}
	return entities, nil
}

type subscriptionFormatter struct {
	loc *time.Location
}

func (f subscriptionFormatter) Format(e reminder.Entity, rc reminder.Recipient) (string, error) {
	sub, ok := e.(*subscription.Subscription)
	if !ok {
		return "", fmt.Errorf("subscription formatter: unexpected entity type %T", e)
	}
	endDate := sub.EndDate.In(f.loc).Format(reminderDateLayout)

	switch rc.Role {
	case reminder.RoleOwner:
		return fmt.Sprintf("Здравствуйте, %s! Ваша подписка (тариф %s) заканчивается %s. Продлите её, чтобы доступ к кассе не был заблокирован.",
			rc.Name, sub.Plan, endDate), nil
	case reminder.RoleAdmin:
		subscriber := sub.UserName
		if subscriber == "" {
			subscriber = sub.UserID.String()
		}
		return fmt.Sprintf("Подписка пользователя %s (тариф %s) заканчивается %s.", subscriber, sub.Plan, endDate), nil
	default:
		return "", fmt.Errorf("subscription formatter: unsupported recipient role %q", rc.Role)
	}
}
