package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"retail_reminder_bot/internal/app"
	"retail_reminder_bot/internal/domain/reminder"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu        sync.Mutex
	ticks     map[string]int
	deadlines []bool
	panicOn   string
	err       error
	ticked    chan string
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{ticks: map[string]int{}, ticked: make(chan string, 16)}
}

func (e *fakeEngine) Tick(ctx context.Context, policy string) (reminder.Outcome, error) {
	e.mu.Lock()
	e.ticks[policy]++
	_, hasDeadline := ctx.Deadline()
	e.deadlines = append(e.deadlines, hasDeadline)
	e.mu.Unlock()
	defer func() { e.ticked <- policy }()

	if policy == e.panicOn {
		panic("tick exploded")
	}
	return reminder.Outcome{Policy: policy}, e.err
}

func (e *fakeEngine) waitTicks(t *testing.T, n int) []string {
	t.Helper()
	var got []string
	for len(got) < n {
		select {
		case p := <-e.ticked:
			got = append(got, p)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %d ticks, got %v", n, got)
		}
	}
	return got
}

func newTestScheduler(engine Engine, jobs []Job) (*ReminderScheduler, *test.Hook) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return NewReminderScheduler(engine, jobs, time.UTC, time.Second, logrus.NewEntry(l)), hook
}

func TestStart_FiresImmediateTickPerPolicy(t *testing.T) {
	engine := newFakeEngine()
	s, _ := newTestScheduler(engine, []Job{
		{Policy: "debt", Every: time.Hour},
		{Policy: "subscription", Every: time.Hour},
	})

	s.Start()
	got := engine.waitTicks(t, 2)
	s.Stop()

	assert.ElementsMatch(t, []string{"debt", "subscription"}, got)
	engine.mu.Lock()
	defer engine.mu.Unlock()
	assert.Equal(t, 1, engine.ticks["debt"])
	for _, hasDeadline := range engine.deadlines {
		assert.True(t, hasDeadline, "every tick runs under a timeout")
	}
}

func TestStart_TicksAtCadence(t *testing.T) {
	engine := newFakeEngine()
	s, _ := newTestScheduler(engine, []Job{{Policy: "debt", Every: time.Second}})

	s.Start()
	engine.waitTicks(t, 2)
	s.Stop()

	engine.mu.Lock()
	defer engine.mu.Unlock()
	assert.GreaterOrEqual(t, engine.ticks["debt"], 2)
}

func TestStart_RecoversPanickingTick(t *testing.T) {
	engine := newFakeEngine()
	engine.panicOn = "birthday"
	s, hook := newTestScheduler(engine, []Job{{Policy: "birthday", Every: time.Hour}})

	require.NotPanics(t, func() {
		s.Start()
		engine.waitTicks(t, 1)
		s.Stop()
	})

	var recovered bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Message == "cron: panic" {
			recovered = true
		}
	}
	assert.True(t, recovered)
}

func TestRunTick_IgnoresOverlapButLogsOtherErrors(t *testing.T) {
	engine := newFakeEngine()
	engine.err = app.ErrTickInProgress
	s, hook := newTestScheduler(engine, nil)

	s.runTick("debt")
	<-engine.ticked
	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, logrus.ErrorLevel, e.Level)
	}

	engine.err = app.ErrUnknownPolicy
	s.runTick("loyalty")
	<-engine.ticked
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "loyalty", hook.LastEntry().Data["policy"])
}
