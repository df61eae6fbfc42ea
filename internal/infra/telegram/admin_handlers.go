package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"retail_reminder_bot/internal/app"
	"retail_reminder_bot/internal/domain/reminder"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const unauthorizedReply = "Ошибка: У вас нет прав для выполнения этой команды."

// RegisterAdminHandlers registers handlers for admin commands.
// It requires the bot instance, admin service, and the configured admin Telegram ID.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, adminService *app.AdminService, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/reminders_status", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/reminders_status",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedReply)
		}

		outcomes, err := adminService.Status(c.Sender().ID)
		if err != nil {
			handlerLogger.WithError(err).Warn("Admin not authorized (service level)")
			return c.Send(unauthorizedReply)
		}
		return c.Send(statusReply(outcomes))
	})

	b.Handle("/run_reminder", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/run_reminder",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedReply)
		}

		args := c.Args()
		if len(args) != 1 {
			handlerLogger.WithField("args_count", len(args)).Warn("Invalid command format")
			return c.Send("Неверный формат команды. Используйте: /run_reminder <birthday|debt|subscription>")
		}
		policy := strings.ToLower(args[0])
		handlerLogger = handlerLogger.WithField("policy", policy)

		outcome, err := adminService.RunNow(ctx, c.Sender().ID, policy)
		if err != nil {
			handlerLogger.WithError(err).Warn("Manual reminder tick rejected")
		} else {
			handlerLogger.Info("Manual reminder tick finished")
		}
		return c.Send(runReply(policy, outcome, err))
	})
}

// statusReply renders the latest outcome of every policy.
func statusReply(outcomes []reminder.Outcome) string {
	if len(outcomes) == 0 {
		return "Напоминания ещё не запускались."
	}
	var sb strings.Builder
	sb.WriteString("Последние запуски напоминаний:\n\n")
	for _, o := range outcomes {
		sb.WriteString(fmt.Sprintf("%s (%s): %s\n", o.Policy, o.StartedAt.Format("02.01.2006 15:04"), o.String()))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func runReply(policy string, outcome reminder.Outcome, err error) string {
	switch {
	case errors.Is(err, app.ErrAdminNotAuthorized):
		return unauthorizedReply
	case errors.Is(err, app.ErrUnknownPolicy):
		return fmt.Sprintf("Неизвестный тип напоминаний: %s. Доступны: birthday, debt, subscription.", policy)
	case errors.Is(err, app.ErrTickInProgress):
		return fmt.Sprintf("Напоминания %s уже выполняются, попробуйте позже.", policy)
	case err != nil:
		return fmt.Sprintf("Произошла ошибка при запуске напоминаний: %s", err.Error())
	case outcome.Err != nil:
		return fmt.Sprintf("Запуск %s прерван: %s", policy, outcome.Err.Error())
	default:
		return fmt.Sprintf("Готово: %s", outcome.String())
	}
}
