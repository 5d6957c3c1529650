package audit

import (
	"context"
	"database/sql"
	"fmt"
)

var _ Repository = (*PostgresRepo)(nil)

// PostgresRepo appends events to auth_events.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`insert into auth_events(id, type, actor_user_id, actor_role, target_user_id, ip_address, message, metadata, created_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, string(e.Type), nullInt(e.ActorUserID), e.ActorRole, nullInt(e.TargetUserID),
		e.IPAddress, e.Message, nullJSON(e.Metadata), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullJSON(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
