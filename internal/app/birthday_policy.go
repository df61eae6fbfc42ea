// internal/app/birthday_policy.go
package app

import (
	"context"
	"fmt"
	"time"

	"retail_reminder_bot/internal/domain/customer"
	"retail_reminder_bot/internal/domain/reminder"
	"retail_reminder_bot/internal/domain/user"
)

const PolicyBirthday = "birthday"

// BirthdayPolicyConfig configures the birthday greeting policy.
type BirthdayPolicyConfig struct {
	Cadence time.Duration
	Hours   []int         // Local hours at which greetings go out, e.g. 6, 12, 18
	Grace   time.Duration // Acceptance window after each hour starts
	Channel user.Channel
}

// NewBirthdayPolicy greets customers on their birthday, once per configured hour bucket.
func NewBirthdayPolicy(customers customer.Repository, users user.Repository, cfg BirthdayPolicyConfig) reminder.Policy {
	return reminder.Policy{
		Name:      PolicyBirthday,
		Cadence:   cfg.Cadence,
		Window:    HourBucketWindow{Hours: cfg.Hours, Grace: cfg.Grace},
		Source:    birthdaySource{customers: customers},
		Resolver:  OwnerResolver{Users: users, Channel: cfg.Channel},
		Formatter: birthdayFormatter{},
	}
}

type birthdaySource struct {
	customers customer.Repository
}

// FindDue matches customers by month and day of r.Start. In non-leap years,
// February 29 birthdays are celebrated on February 28.
func (s birthdaySource) FindDue(ctx context.Context, r reminder.DateRange) ([]reminder.Entity, error) {
	_, month, day := r.Start.Date()
	includeLeapDay := month == time.February && day == 28 && !isLeapYear(r.Start.Year())

	customers, err := s.customers.ListByBirthday(ctx, month, day, includeLeapDay)
	if err != nil {
		return nil, err
	}
	entities := make([]reminder.Entity, 0, len(customers))
	for _, c := range customers {
		entities = append(entities, c)
	}
	return entities, nil
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

type birthdayFormatter struct{}

func (birthdayFormatter) Format(e reminder.Entity, _ reminder.Recipient) (string, error) {
	c, ok := e.(*customer.Customer)
	if !ok {
		return "", fmt.Errorf("birthday formatter: unexpected entity type %T", e)
	}
	return fmt.Sprintf("С днём рождения, %s! 🎉 Желаем счастья и ждём вас в нашем магазине.", c.Name), nil
}
