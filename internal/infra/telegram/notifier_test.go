package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeClient struct {
	sent []sentMessage
	err  error
}

func (c *fakeClient) SendMessage(chatID int64, text string, _ *telebot.SendOptions) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func TestNotifier_Send(t *testing.T) {
	client := &fakeClient{}
	n := NewNotifier(client, 100)

	require.NoError(t, n.Send(context.Background(), "-100200300", "Напоминание"))
	require.Len(t, client.sent, 1)
	assert.Equal(t, int64(-100200300), client.sent[0].chatID)
	assert.Equal(t, "Напоминание", client.sent[0].text)
}

func TestNotifier_InvalidChatID(t *testing.T) {
	client := &fakeClient{}
	n := NewNotifier(client, 100)

	err := n.Send(context.Background(), "@shop_owner", "text")
	assert.Error(t, err)
	assert.Empty(t, client.sent)
}

func TestNotifier_WrapsClientError(t *testing.T) {
	blocked := errors.New("telegram: Forbidden: bot was blocked by the user (403)")
	n := NewNotifier(&fakeClient{err: blocked}, 100)

	err := n.Send(context.Background(), "42", "text")
	assert.ErrorIs(t, err, blocked)
}

func TestNotifier_RateLimitHonorsContext(t *testing.T) {
	client := &fakeClient{}
	n := NewNotifier(client, 0.001)
	require.NoError(t, n.Send(context.Background(), "42", "first"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := n.Send(ctx, "42", "second")
	assert.Error(t, err)
	assert.Len(t, client.sent, 1)
}
