package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
)

type ResultStore struct {
	db *sqlx.DB
}

const (
	// The conflict branch keeps the original id and evaluated_at.
	upsertResultQuery = `
		INSERT INTO results (id, registration_id, round_id, score, position, advanced, observations, evaluated_at, updated_at)
		VALUES (:id, :registration_id, :round_id, :score, :position, :advanced, :observations, :evaluated_at, :updated_at)
		ON CONFLICT (registration_id, round_id) DO UPDATE SET
		score = excluded.score,
		position = excluded.position,
		advanced = excluded.advanced,
		observations = excluded.observations,
		updated_at = excluded.updated_at
	`
	getResultByKeyQuery = "SELECT * FROM results WHERE registration_id = ? AND round_id = ?"
)

func NewResultStore(db *sqlx.DB) *ResultStore {
	return &ResultStore{db: db}
}

func (s *ResultStore) UpsertResult(ctx context.Context, tx *sqlx.Tx, r *contest.Result) error {
	_, err := tx.NamedExecContext(ctx, upsertResultQuery, r)
	return err
}

func (s *ResultStore) GetResultByKeyTx(ctx context.Context, tx *sqlx.Tx, registrationID, roundID uuid.UUID) (*contest.Result, error) {
	var r contest.Result
	if err := tx.GetContext(ctx, &r, tx.Rebind(getResultByKeyQuery), registrationID, roundID); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListResults orders by score, best first. Nil filters match everything.
func (s *ResultStore) ListResults(ctx context.Context, roundID, registrationID *uuid.UUID) ([]contest.Result, error) {
	query := "SELECT * FROM results WHERE 1 = 1"
	var args []any
	if roundID != nil {
		query += " AND round_id = ?"
		args = append(args, *roundID)
	}
	if registrationID != nil {
		query += " AND registration_id = ?"
		args = append(args, *registrationID)
	}
	query += " ORDER BY score DESC, evaluated_at ASC"

	results := []contest.Result{}
	err := s.db.SelectContext(ctx, &results, s.db.Rebind(query), args...)
	return results, err
}
