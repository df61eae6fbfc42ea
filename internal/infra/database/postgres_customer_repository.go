package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"retail_reminder_bot/internal/domain/customer"
)

type PostgresCustomerRepository struct {
	db *sql.DB
}

func NewPostgresCustomerRepository(db *sql.DB) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

func (r *PostgresCustomerRepository) ListByBirthday(ctx context.Context, month time.Month, day int, includeLeapDay bool) ([]*customer.Customer, error) {
	query := `SELECT id, user_id, name, birth_date, is_active, created_at
               FROM customers
               WHERE is_active = TRUE AND birth_date IS NOT NULL
                 AND ((EXTRACT(MONTH FROM birth_date) = $1 AND EXTRACT(DAY FROM birth_date) = $2)
                   OR ($3 AND EXTRACT(MONTH FROM birth_date) = 2 AND EXTRACT(DAY FROM birth_date) = 29))
               ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query, int(month), day, includeLeapDay)
	if err != nil {
		return nil, fmt.Errorf("error listing customers by birthday: %w", err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		c := &customer.Customer{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.BirthDate, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning customer row: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customer rows: %w", err)
	}
	return customers, nil
}
