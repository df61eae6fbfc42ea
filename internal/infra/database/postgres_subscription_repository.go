package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"retail_reminder_bot/internal/domain/subscription"
)

type PostgresSubscriptionRepository struct {
	db *sql.DB
}

func NewPostgresSubscriptionRepository(db *sql.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

func (r *PostgresSubscriptionRepository) FindExpiring(ctx context.Context, from, to time.Time, plan subscription.Plan) ([]*subscription.Subscription, error) {
	query := `SELECT s.id, s.user_id, COALESCE(u.name, ''), s.plan, s.end_date, s.is_blocked, s.created_at
               FROM subscriptions s
               LEFT JOIN users u ON u.id = s.user_id
               WHERE s.end_date >= $1 AND s.end_date < $2
                 AND s.plan = $3 AND s.is_blocked = FALSE
               ORDER BY s.end_date, s.id`

	rows, err := r.db.QueryContext(ctx, query, from, to, plan)
	if err != nil {
		return nil, fmt.Errorf("error querying expiring subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]*subscription.Subscription, 0)
	for rows.Next() {
		s := &subscription.Subscription{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.UserName, &s.Plan, &s.EndDate, &s.IsBlocked, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning subscription row: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscription rows: %w", err)
	}
	return subs, nil
}
