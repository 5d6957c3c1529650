package orders

import (
	"context"
	"database/sql"
	"fmt"
)

var _ Repository = (*PostgresRepo)(nil)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) List(ctx context.Context, limit, offset int) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`select id, title, client_id, center_id, status, quantity, unit_price, total_price, created_at, updated_at
		 from orders order by id limit $1 offset $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		var (
			o      Order
			status string
		)
		if err := rows.Scan(&o.ID, &o.Title, &o.ClientID, &o.CenterID, &status, &o.Quantity,
			&o.UnitPriceMinor, &o.TotalPriceMinor, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = Status(status)
		out = append(out, o)
	}
	return out, rows.Err()
}
