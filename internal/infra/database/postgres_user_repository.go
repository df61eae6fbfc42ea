package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"retail_reminder_bot/internal/domain/user"

	"github.com/google/uuid"
)

// Custom errors
var ErrUserNotFound = fmt.Errorf("user not found")

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, name, role, telegram_chat_id, phone, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Role, &u.TelegramChatID, &u.Phone, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	return u, nil
}

// channelColumn maps a notification channel to the users column holding its address.
func channelColumn(ch user.Channel) (string, error) {
	switch ch {
	case user.ChannelTelegram:
		return "telegram_chat_id", nil
	case user.ChannelSMS:
		return "phone", nil
	default:
		return "", fmt.Errorf("unsupported notification channel %q", ch)
	}
}

func (r *PostgresUserRepository) FirstWithChannel(ctx context.Context, role user.Role, ch user.Channel) (*user.User, error) {
	column, err := channelColumn(ch)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + userColumns + ` FROM users
               WHERE role = $1 AND is_active = TRUE AND ` + column + ` IS NOT NULL AND ` + column + ` <> ''
               ORDER BY created_at, id LIMIT 1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, role))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting first %s user with %s channel: %w", role, ch, err)
	}
	return u, nil
}
