package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"retail_reminder_bot/internal/domain/debt"

	"github.com/lib/pq" // For pq.Array
)

type PostgresDebtRepository struct {
	db *sql.DB
}

func NewPostgresDebtRepository(db *sql.DB) *PostgresDebtRepository {
	return &PostgresDebtRepository{db: db}
}

func (r *PostgresDebtRepository) FindDue(ctx context.Context, from, to time.Time, statuses []debt.Status) ([]*debt.Debt, error) {
	if len(statuses) == 0 {
		return []*debt.Debt{}, nil
	}
	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	query := `SELECT id, user_id, customer_name, amount, currency, due_date, status, created_at
               FROM debts
               WHERE due_date >= $1 AND due_date < $2
                 AND status = ANY($3::varchar[])
               ORDER BY due_date, id`

	rows, err := r.db.QueryContext(ctx, query, from, to, pq.Array(statusStrings))
	if err != nil {
		return nil, fmt.Errorf("error querying due debts: %w", err)
	}
	defer rows.Close()

	debts := make([]*debt.Debt, 0)
	for rows.Next() {
		d := &debt.Debt{}
		if err := rows.Scan(&d.ID, &d.UserID, &d.CustomerName, &d.Amount, &d.Currency, &d.DueDate, &d.Status, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning debt row: %w", err)
		}
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating debt rows: %w", err)
	}
	return debts, nil
}
