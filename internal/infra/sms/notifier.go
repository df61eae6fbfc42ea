// Package sms delivers reminders as SMS or WhatsApp messages through Twilio.
package sms

import (
	"context"
	"fmt"
	"strings"

	"retail_reminder_bot/internal/domain/reminder"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"golang.org/x/time/rate"
)

const whatsappPrefix = "whatsapp:"

var _ reminder.Notifier = (*Notifier)(nil)

// messageCreator is the part of the Twilio REST API the notifier uses.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Notifier sends reminders to the recipient's phone. A channel id prefixed
// with "whatsapp:" is sent over WhatsApp from the same Twilio number.
type Notifier struct {
	api     messageCreator
	from    string
	limiter *rate.Limiter
	logger  *logrus.Entry
}

func NewNotifier(accountSID, authToken, from string, ratePerSec float64, logger *logrus.Entry) *Notifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return newNotifier(client.Api, from, ratePerSec, logger)
}

func newNotifier(api messageCreator, from string, ratePerSec float64, logger *logrus.Entry) *Notifier {
	return &Notifier{
		api:     api,
		from:    from,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), 1),
		logger:  logger,
	}
}

func (n *Notifier) Send(ctx context.Context, channelID, text string) error {
	to := strings.TrimSpace(channelID)
	if to == "" || to == whatsappPrefix {
		return fmt.Errorf("empty phone number")
	}
	from := n.from
	if strings.HasPrefix(to, whatsappPrefix) {
		from = whatsappPrefix + strings.TrimPrefix(n.from, whatsappPrefix)
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("sms rate limiter: %w", err)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(text)

	resp, err := n.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	if resp != nil && resp.Sid != nil {
		n.logger.WithField("sid", *resp.Sid).Debug("Twilio accepted message")
	}
	return nil
}
