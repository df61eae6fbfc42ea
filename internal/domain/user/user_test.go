package user

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddress(t *testing.T) {
	u := &User{
		TelegramChatID: sql.NullString{String: "42", Valid: true},
	}
	assert.Equal(t, "42", u.Address(ChannelTelegram))
	assert.Empty(t, u.Address(ChannelSMS))

	u.Phone = sql.NullString{String: "+998901234567", Valid: true}
	assert.Equal(t, "+998901234567", u.Address(ChannelSMS))
	assert.Empty(t, u.Address(Channel("pigeon")))
}
