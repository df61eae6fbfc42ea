package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role is the account role stored for a user of the shop.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSeller   Role = "seller"
	RoleCustomer Role = "customer"
)

// Channel names the external channel a user can be reached through.
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelSMS      Channel = "sms"
)

// User represents an account that may receive reminders.
type User struct {
	ID             uuid.UUID
	Name           string
	Role           Role
	TelegramChatID sql.NullString // Set once the account is linked to the bot
	Phone          sql.NullString
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Address returns the identifier of the user on the given channel,
// or an empty string when the user cannot be reached there.
func (u *User) Address(ch Channel) string {
	switch ch {
	case ChannelTelegram:
		if u.TelegramChatID.Valid {
			return u.TelegramChatID.String
		}
	case ChannelSMS:
		if u.Phone.Valid {
			return u.Phone.String
		}
	}
	return ""
}
