package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeAPI struct {
	params []*twilioApi.CreateMessageParams
	err    error
}

func (f *fakeAPI) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM0123456789"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func newTestNotifier(api *fakeAPI) *Notifier {
	l, _ := test.NewNullLogger()
	return newNotifier(api, "+15005550006", 100, logrus.NewEntry(l))
}

func TestSend_SMS(t *testing.T) {
	api := &fakeAPI{}
	n := newTestNotifier(api)

	require.NoError(t, n.Send(context.Background(), "+998901234567", "Напоминаем о долге"))
	require.Len(t, api.params, 1)
	p := api.params[0]
	assert.Equal(t, "+998901234567", *p.To)
	assert.Equal(t, "+15005550006", *p.From)
	assert.Equal(t, "Напоминаем о долге", *p.Body)
}

func TestSend_WhatsApp(t *testing.T) {
	api := &fakeAPI{}
	n := newTestNotifier(api)

	require.NoError(t, n.Send(context.Background(), "whatsapp:+998901234567", "text"))
	require.Len(t, api.params, 1)
	assert.Equal(t, "whatsapp:+15005550006", *api.params[0].From)
}

func TestSend_Errors(t *testing.T) {
	api := &fakeAPI{}
	n := newTestNotifier(api)
	assert.Error(t, n.Send(context.Background(), "  ", "text"))
	assert.Empty(t, api.params)

	rejected := errors.New("Status: 400 - ApiError 21211: Invalid 'To' Phone Number")
	n = newTestNotifier(&fakeAPI{err: rejected})
	assert.ErrorIs(t, n.Send(context.Background(), "+1", "text"), rejected)
}
