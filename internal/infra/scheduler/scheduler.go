package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"retail_reminder_bot/internal/app"
	"retail_reminder_bot/internal/domain/reminder"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Engine is the part of the reminder engine the scheduler drives.
type Engine interface {
	Tick(ctx context.Context, policy string) (reminder.Outcome, error)
}

// Job is one policy ticking at a fixed cadence.
type Job struct {
	Policy string
	Every  time.Duration
}

// JobsFor returns one job per runner of the engine, at the policy cadence.
func JobsFor(engine *app.ReminderEngine) []Job {
	runners := engine.Runners()
	jobs := make([]Job, 0, len(runners))
	for _, r := range runners {
		p := r.Policy()
		jobs = append(jobs, Job{Policy: p.Name, Every: p.Cadence})
	}
	return jobs
}

type ReminderScheduler struct {
	cronEngine  *cron.Cron
	chain       cron.Chain
	engine      Engine
	jobs        []Job
	tickTimeout time.Duration
	logger      *logrus.Entry
	wg          sync.WaitGroup
}

func NewReminderScheduler(
	engine Engine,
	jobs []Job,
	loc *time.Location,
	tickTimeout time.Duration,
	logger *logrus.Entry,
) *ReminderScheduler {
	cl := cronLogger{logger: logger}
	return &ReminderScheduler{
		cronEngine:  cron.New(cron.WithLocation(loc), cron.WithLogger(cl)),
		chain:       cron.NewChain(cron.Recover(cl)),
		engine:      engine,
		jobs:        jobs,
		tickTimeout: tickTimeout,
		logger:      logger,
	}
}

// Start registers every job and fires one tick of each right away, so a
// restart does not wait a full cadence for the first evaluation.
func (s *ReminderScheduler) Start() {
	s.logger.Info("Starting reminder scheduler...")

	for _, job := range s.jobs {
		policy := job.Policy
		wrapped := s.chain.Then(cron.FuncJob(func() { s.runTick(policy) }))
		id := s.cronEngine.Schedule(cron.Every(job.Every), wrapped)
		s.logger.WithFields(logrus.Fields{
			"policy":   policy,
			"every":    job.Every.String(),
			"entry_id": id,
		}).Info("Reminder job registered")

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			wrapped.Run()
		}()
	}

	s.cronEngine.Start()
	s.logger.WithField("jobs", len(s.jobs)).Info("Reminder scheduler started")
}

func (s *ReminderScheduler) runTick(policy string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.tickTimeout)
	defer cancel()

	if _, err := s.engine.Tick(ctx, policy); err != nil {
		if errors.Is(err, app.ErrTickInProgress) {
			return
		}
		s.logger.WithError(err).WithField("policy", policy).Error("Reminder tick could not run")
	}
}

// Stop stops scheduling new ticks and waits for running ones.
func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.wg.Wait()
	s.logger.Info("Reminder scheduler gracefully stopped.")
}

// cronLogger routes cron's own messages through logrus.
type cronLogger struct {
	logger *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).WithError(err).Error("cron: " + msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if k, ok := keysAndValues[i].(string); ok {
			f[k] = keysAndValues[i+1]
		}
	}
	return f
}
