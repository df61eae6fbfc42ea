// Package memory provides in-memory implementations of the repositories the
// reminder engine reads from. They back the tests and the dev dry-run mode
// (STORE_DRIVER=memory).
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"retail_reminder_bot/internal/domain/customer"
	"retail_reminder_bot/internal/domain/debt"
	"retail_reminder_bot/internal/domain/subscription"
	"retail_reminder_bot/internal/domain/user"
	idb "retail_reminder_bot/internal/infra/database"

	"github.com/google/uuid"
)

var (
	_ user.Repository         = (*UserRepository)(nil)
	_ customer.Repository     = (*CustomerRepository)(nil)
	_ debt.Repository         = (*DebtRepository)(nil)
	_ subscription.Repository = (*SubscriptionRepository)(nil)
)

// Store holds users, customers, debts and subscriptions. The zero value is
// not usable; call NewStore.
type Store struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]*user.User
	customers     []*customer.Customer
	debts         []*debt.Debt
	subscriptions []*subscription.Subscription

	// failWith, when set, is returned by every query.
	failWith error
}

func NewStore() *Store {
	return &Store{users: make(map[uuid.UUID]*user.User)}
}

// Fail makes every following query return err until it is reset with nil.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Store) AddUser(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) AddCustomer(c *customer.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = append(s.customers, c)
}

func (s *Store) AddDebt(d *debt.Debt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debts = append(s.debts, d)
}

func (s *Store) AddSubscription(sub *subscription.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = append(s.subscriptions, sub)
}

// Users returns a user.Repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Customers returns a customer.Repository view of the store.
func (s *Store) Customers() *CustomerRepository { return &CustomerRepository{s: s} }

// Debts returns a debt.Repository view of the store.
func (s *Store) Debts() *DebtRepository { return &DebtRepository{s: s} }

// Subscriptions returns a subscription.Repository view of the store.
func (s *Store) Subscriptions() *SubscriptionRepository { return &SubscriptionRepository{s: s} }

type UserRepository struct{ s *Store }

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, idb.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) FirstWithChannel(_ context.Context, role user.Role, ch user.Channel) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	var candidates []*user.User
	for _, u := range r.s.users {
		if u.Role == role && u.IsActive && u.Address(ch) != "" {
			candidates = append(candidates, u)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		return candidates[i].ID.String() < candidates[j].ID.String()
	})
	cp := *candidates[0]
	return &cp, nil
}

type CustomerRepository struct{ s *Store }

func (r *CustomerRepository) ListByBirthday(_ context.Context, month time.Month, day int, includeLeapDay bool) ([]*customer.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	out := make([]*customer.Customer, 0)
	for _, c := range r.s.customers {
		if !c.IsActive || !c.BirthDate.Valid {
			continue
		}
		_, m, d := c.BirthDate.Time.Date()
		if (m == month && d == day) || (includeLeapDay && m == time.February && d == 29) {
			out = append(out, c)
		}
	}
	return out, nil
}

type DebtRepository struct{ s *Store }

func (r *DebtRepository) FindDue(_ context.Context, from, to time.Time, statuses []debt.Status) ([]*debt.Debt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	out := make([]*debt.Debt, 0)
	for _, d := range r.s.debts {
		if inRange(d.DueDate, from, to) && slices.Contains(statuses, d.Status) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

type SubscriptionRepository struct{ s *Store }

func (r *SubscriptionRepository) FindExpiring(_ context.Context, from, to time.Time, plan subscription.Plan) ([]*subscription.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	out := make([]*subscription.Subscription, 0)
	for _, sub := range r.s.subscriptions {
		if inRange(sub.EndDate, from, to) && sub.Plan == plan && !sub.IsBlocked {
			out = append(out, sub)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

// inRange reports whether from <= t < to.
func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
