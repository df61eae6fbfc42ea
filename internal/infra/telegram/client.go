// internal/infra/telegram/client.go
package telegram

import (
	domainTelegram "retail_reminder_bot/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

var _ domainTelegram.Client = (*TelebotAdapter)(nil)

// TelebotAdapter implements the Client interface using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to a private chat. Reminders are never
// sent with a parse mode, so names with markdown characters arrive verbatim.
func (tba *TelebotAdapter) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{DisableWebPagePreview: true}
	}

	_, err := tba.bot.Send(&telebot.Chat{ID: recipientChatID}, text, options)
	return err
}
