// internal/app/reminder_engine.go
package app

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"retail_reminder_bot/internal/domain/reminder"

	"github.com/sirupsen/logrus"
)

// PolicyRunner executes the ticks of one reminder policy. It owns the
// idempotency cache of that policy and never runs two ticks at once.
type PolicyRunner struct {
	policy   reminder.Policy
	cache    *IdempotencyCache
	notifier reminder.Notifier
	logger   *logrus.Entry
	now      func() time.Time
	loc      *time.Location

	running atomic.Bool

	mu   sync.Mutex
	last *reminder.Outcome
}

// RunnerOption customizes a PolicyRunner.
type RunnerOption func(*PolicyRunner)

// WithClock replaces time.Now as the runner's clock.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *PolicyRunner) { r.now = now }
}

// WithLocation sets the time zone the clock is read in. It must match the
// zone of the stored trigger dates.
func WithLocation(loc *time.Location) RunnerOption {
	return func(r *PolicyRunner) { r.loc = loc }
}

func NewPolicyRunner(
	policy reminder.Policy,
	cache *IdempotencyCache,
	notifier reminder.Notifier,
	logger *logrus.Entry,
	opts ...RunnerOption,
) (*PolicyRunner, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if cache == nil || notifier == nil || logger == nil {
		return nil, fmt.Errorf("%w: %s: cache, notifier and logger are required", reminder.ErrInvalidPolicy, policy.Name)
	}
	r := &PolicyRunner{
		policy:   policy,
		cache:    cache,
		notifier: notifier,
		logger:   logger.WithField("policy", policy.Name),
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *PolicyRunner) Policy() reminder.Policy { return r.policy }

// LastOutcome returns the outcome of the latest finished tick.
func (r *PolicyRunner) LastOutcome() (reminder.Outcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return reminder.Outcome{}, false
	}
	return *r.last, true
}

// Tick runs one evaluation of the policy. It returns ErrTickInProgress
// without doing anything when the previous tick has not finished yet. Every
// other failure is reported in the outcome; Tick never panics.
func (r *PolicyRunner) Tick(ctx context.Context) (outcome reminder.Outcome, err error) {
	if !r.running.CompareAndSwap(false, true) {
		r.logger.Warn("Previous reminder tick still running, skipping this one")
		return reminder.Outcome{Policy: r.policy.Name}, ErrTickInProgress
	}
	defer r.running.Store(false)

	now := r.now().In(r.loc)
	acct := newDeliveryAccountant(r.logger, r.policy.Name, now)

	defer func() {
		if p := recover(); p != nil {
			r.logger.WithField("stack", string(debug.Stack())).Errorf("Panic during reminder tick: %v", p)
			acct.abort(fmt.Errorf("panic during tick: %v", p))
		}
		outcome = acct.finish(r.now().In(r.loc))
		r.mu.Lock()
		r.last = &outcome
		r.mu.Unlock()
	}()

	window := r.policy.Window.Evaluate(now)
	acct.period(window.PeriodTag)

	if evicted := r.cache.EvictStale(window.PeriodTag); evicted > 0 {
		r.logger.WithField("evicted", evicted).Debug("Dropped idempotency records of a previous day")
	}
	if !window.ShouldQuery {
		return
	}

	entities, qErr := r.policy.Source.FindDue(ctx, window.Range)
	if qErr != nil {
		acct.abort(fmt.Errorf("%w: %w", ErrStoreUnavailable, qErr))
		return
	}
	acct.queried(len(entities))

	for _, e := range entities {
		if ctx.Err() != nil {
			acct.abort(fmt.Errorf("tick interrupted: %w", ctx.Err()))
			return
		}
		r.processEntity(ctx, e, window.PeriodTag, acct)
	}
	return
}

func (r *PolicyRunner) processEntity(ctx context.Context, e reminder.Entity, period reminder.PeriodTag, acct *deliveryAccountant) {
	entLogger := r.logger.WithFields(logrus.Fields{"entity_id": e.EntityID(), "period": period})

	recipients, err := r.policy.Resolver.Resolve(ctx, e)
	if err != nil {
		entLogger.WithError(err).Error("Failed to resolve reminder recipients")
	}
	if len(recipients) == 0 {
		if err == nil {
			entLogger.Debug("No reachable recipient, skipping entity")
			acct.skipped()
		}
		return
	}

	for _, rc := range recipients {
		key := r.policy.KeyFor(e, rc.Role)
		rcLogger := entLogger.WithFields(logrus.Fields{"role": rc.Role, "key": key.String()})

		if r.cache.IsSent(key, period) {
			acct.skipped()
			continue
		}

		text, err := r.policy.Formatter.Format(e, rc)
		if err != nil {
			rcLogger.WithError(err).Error("Failed to render reminder message")
			acct.failed()
			continue
		}

		if err := r.send(ctx, rc.ChannelID, text); err != nil {
			rcLogger.WithError(err).Warn("Reminder delivery failed, will retry on a later tick")
			acct.failed()
			continue
		}

		r.cache.MarkSent(key, period)
		acct.sent()
		rcLogger.Info("Reminder delivered")
	}
}

// send calls the notifier and turns both errors and panics into ErrDeliveryFailed.
func (r *PolicyRunner) send(ctx context.Context, channelID, text string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: notifier panic: %v", ErrDeliveryFailed, p)
		}
	}()
	if err := r.notifier.Send(ctx, channelID, text); err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return nil
}

// ReminderEngine holds the runners of every configured policy, each with its
// own idempotency cache.
type ReminderEngine struct {
	runners map[string]*PolicyRunner
	order   []string
}

func NewReminderEngine(runners ...*PolicyRunner) (*ReminderEngine, error) {
	e := &ReminderEngine{runners: make(map[string]*PolicyRunner, len(runners))}
	for _, r := range runners {
		name := r.policy.Name
		if _, dup := e.runners[name]; dup {
			return nil, fmt.Errorf("%w: duplicate policy %q", reminder.ErrInvalidPolicy, name)
		}
		e.runners[name] = r
		e.order = append(e.order, name)
	}
	return e, nil
}

// Runners returns the runners in registration order.
func (e *ReminderEngine) Runners() []*PolicyRunner {
	out := make([]*PolicyRunner, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.runners[name])
	}
	return out
}

// Tick runs one tick of the named policy.
func (e *ReminderEngine) Tick(ctx context.Context, policy string) (reminder.Outcome, error) {
	r, ok := e.runners[policy]
	if !ok {
		return reminder.Outcome{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
	return r.Tick(ctx)
}

// LastOutcomes returns the latest outcome of every policy that has ticked.
func (e *ReminderEngine) LastOutcomes() []reminder.Outcome {
	var out []reminder.Outcome
	for _, name := range e.order {
		if o, ok := e.runners[name].LastOutcome(); ok {
			out = append(out, o)
		}
	}
	return out
}
