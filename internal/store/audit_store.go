package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
)

type AuditStore struct {
	db *sqlx.DB
}

const appendAuditEventQuery = `
	INSERT INTO audit_events (id, user_id, action, table_name, record_id, previous_values, new_values, ip_address, user_agent, created_at)
	VALUES (:id, :user_id, :action, :table_name, :record_id, :previous_values, :new_values, :ip_address, :user_agent, :created_at)
`

func NewAuditStore(db *sqlx.DB) *AuditStore {
	return &AuditStore{db: db}
}

// Append writes the event inside the caller's transaction.
func (s *AuditStore) Append(ctx context.Context, tx *sqlx.Tx, e *contest.AuditEvent) error {
	_, err := tx.NamedExecContext(ctx, appendAuditEventQuery, e)
	return err
}

func (s *AuditStore) ListEvents(ctx context.Context, f contest.AuditFilter) ([]contest.AuditEvent, error) {
	query := "SELECT * FROM audit_events WHERE 1 = 1"
	var args []any
	if f.TableName != "" {
		query += " AND table_name = ?"
		args = append(args, f.TableName)
	}
	if f.RecordID != "" {
		query += " AND record_id = ?"
		args = append(args, f.RecordID)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, f.Limit)

	events := []contest.AuditEvent{}
	err := s.db.SelectContext(ctx, &events, s.db.Rebind(query), args...)
	return events, err
}
