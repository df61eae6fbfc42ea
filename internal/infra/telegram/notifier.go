package telegram

import (
	"context"
	"fmt"
	"strconv"

	"retail_reminder_bot/internal/domain/reminder"
	domainTelegram "retail_reminder_bot/internal/domain/telegram"

	"golang.org/x/time/rate"
)

var _ reminder.Notifier = (*Notifier)(nil)

// Notifier delivers reminders as Telegram messages. The channel id is the
// recipient's chat id.
type Notifier struct {
	client  domainTelegram.Client
	limiter *rate.Limiter
}

// NewNotifier returns a notifier that sends at most ratePerSec messages per second.
func NewNotifier(client domainTelegram.Client, ratePerSec float64) *Notifier {
	return &Notifier{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}
}

func (n *Notifier) Send(ctx context.Context, channelID, text string) error {
	chatID, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", channelID, err)
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limiter: %w", err)
	}
	if err := n.client.SendMessage(chatID, text, nil); err != nil {
		return fmt.Errorf("telegram send to %d: %w", chatID, err)
	}
	return nil
}
