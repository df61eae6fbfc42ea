// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(b *telebot.Bot, adminTelegramID int64, baseLogger *logrus.Entry) {
	helpLogger := baseLogger.WithField("handler_group", "help")

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := helpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if adminTelegramID != 0 && senderID == adminTelegramID {
			logCtx.Info("User identified as Admin, sending admin help.")
			return c.Send(adminHelpText(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		}
		return c.Send("Я присылаю напоминания о днях рождения, сроках оплаты долгов и окончании подписки. Команды для вас не требуются.")
	})
}

func adminHelpText() string {
	var helpText strings.Builder
	helpText.WriteString("Доступные команды Администратора:\n\n")
	helpText.WriteString("`/reminders_status`\n - Показать результат последнего запуска каждого типа напоминаний.\n\n")
	helpText.WriteString("`/run_reminder <birthday|debt|subscription>`\n - Запустить проверку напоминаний немедленно. Повторной отправки в том же периоде не будет.\n\n")
	helpText.WriteString("`/help`\n - Показать это справочное сообщение.")
	return helpText.String()
}
