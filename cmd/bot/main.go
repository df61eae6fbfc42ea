package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"retail_reminder_bot/internal/app"
	"retail_reminder_bot/internal/domain/customer"
	"retail_reminder_bot/internal/domain/debt"
	"retail_reminder_bot/internal/domain/reminder"
	"retail_reminder_bot/internal/domain/subscription"
	"retail_reminder_bot/internal/domain/user"
	"retail_reminder_bot/internal/infra/config"
	idb "retail_reminder_bot/internal/infra/database"
	"retail_reminder_bot/internal/infra/logger"
	"retail_reminder_bot/internal/infra/memory"
	"retail_reminder_bot/internal/infra/scheduler"
	"retail_reminder_bot/internal/infra/sms"
	"retail_reminder_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

type repositories struct {
	users         user.Repository
	customers     customer.Repository
	debts         debt.Repository
	subscriptions subscription.Repository
}

func main() {
	fmt.Println("Retail Reminder Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment":    cfg.Environment,
		"store_driver":   cfg.StoreDriver,
		"notify_channel": cfg.NotifyChannel,
		"timezone":       cfg.Location.String(),
		"policies":       cfg.Policies,
	}).Info("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not open the entity store")
	}
	defer closeStore()
	mainLogger.Info("Entity store ready")

	var bot *telebot.Bot
	if cfg.TelegramToken != "" {
		bot, err = newBot(cfg.TelegramToken, logger.Component("telebot"))
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
	}

	var notifier reminder.Notifier
	channel := user.ChannelTelegram
	switch cfg.NotifyChannel {
	case config.ChannelSMS:
		channel = user.ChannelSMS
		notifier = sms.NewNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.NotifyRatePerSec, logger.Component("sms"))
	default:
		notifier = telegram.NewNotifier(telegram.NewTelebotAdapter(bot), cfg.NotifyRatePerSec)
	}
	mainLogger.WithField("channel", channel).Info("Notifier initialized")

	engine, err := buildEngine(cfg, repos, channel, notifier)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not build the reminder engine")
	}

	reminderScheduler := scheduler.NewReminderScheduler(
		engine,
		scheduler.JobsFor(engine),
		cfg.Location,
		cfg.TickTimeout,
		logger.Component("scheduler"),
	)
	reminderScheduler.Start()

	if bot != nil {
		handlerLogger := logger.Component("telegram_handlers")
		adminService := app.NewAdminService(engine, cfg.AdminTelegramID, cfg.TickTimeout)
		telegram.RegisterBotCommands(bot, cfg.AdminTelegramID, handlerLogger)
		if cfg.AdminTelegramID != 0 {
			telegram.RegisterAdminHandlers(ctx, bot, adminService, cfg.AdminTelegramID, handlerLogger)
			mainLogger.Info("Admin command handlers registered")
		}
		// Start bot in a goroutine so it doesn't block graceful shutdown handling
		go bot.Start()
	}

	mainLogger.Info("Application setup complete. Scheduler is running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLogger.Info("Shutting down application...")
	if bot != nil {
		bot.Stop()
	}
	reminderScheduler.Stop()
	cancel()
	mainLogger.Info("Application shut down gracefully.")
}

func openStore(ctx context.Context, cfg *config.AppConfig) (repositories, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		store := memory.NewStore()
		return repositories{
			users:         store.Users(),
			customers:     store.Customers(),
			debts:         store.Debts(),
			subscriptions: store.Subscriptions(),
		}, func() {}, nil
	}

	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return repositories{}, nil, err
	}
	return repositories{
		users:         idb.NewPostgresUserRepository(db),
		customers:     idb.NewPostgresCustomerRepository(db),
		debts:         idb.NewPostgresDebtRepository(db),
		subscriptions: idb.NewPostgresSubscriptionRepository(db),
	}, func() { db.Close() }, nil
}

func buildEngine(cfg *config.AppConfig, repos repositories, channel user.Channel, notifier reminder.Notifier) (*app.ReminderEngine, error) {
	var policies []reminder.Policy
	if cfg.PolicyEnabled(app.PolicyBirthday) {
		policies = append(policies, app.NewBirthdayPolicy(repos.customers, repos.users, app.BirthdayPolicyConfig{
			Cadence: cfg.PollInterval,
			Hours:   cfg.BirthdayHours,
			Grace:   cfg.BirthdayWindow,
			Channel: channel,
		}))
	}
	if cfg.PolicyEnabled(app.PolicyDebt) {
		statuses := make([]debt.Status, 0, len(cfg.DebtStatuses))
		for _, s := range cfg.DebtStatuses {
			statuses = append(statuses, debt.Status(s))
		}
		policies = append(policies, app.NewDebtPolicy(repos.debts, repos.users, app.DebtPolicyConfig{
			Cadence:  cfg.PollInterval,
			Statuses: statuses,
			Channel:  channel,
			Location: cfg.Location,
		}))
	}
	if cfg.PolicyEnabled(app.PolicySubscription) {
		policies = append(policies, app.NewSubscriptionPolicy(repos.subscriptions, repos.users, app.SubscriptionPolicyConfig{
			Cadence:  cfg.PollInterval,
			Plan:     subscription.Plan(cfg.SubscriptionPlan),
			Channel:  channel,
			Location: cfg.Location,
		}))
	}

	runnerLogger := logger.Component("reminder_engine")
	runners := make([]*app.PolicyRunner, 0, len(policies))
	for _, p := range policies {
		r, err := app.NewPolicyRunner(p, app.NewIdempotencyCache(), notifier, runnerLogger, app.WithLocation(cfg.Location))
		if err != nil {
			return nil, err
		}
		runners = append(runners, r)
	}
	return app.NewReminderEngine(runners...)
}

func newBot(token string, log *logrus.Entry) (*telebot.Bot, error) {
	pref := telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := log.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			entry.Error("Telegram bot error")
		},
	}
	return telebot.NewBot(pref)
}
