package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
)

type RoundStore struct {
	db *sqlx.DB
}

const (
	createRoundQuery = `
		INSERT INTO rounds (id, name, description, venue_id, round_type, scheduled_at, active, created_at, updated_at)
		VALUES (:id, :name, :description, :venue_id, :round_type, :scheduled_at, :active, :created_at, :updated_at)
	`
	updateRoundQuery = `
		UPDATE rounds SET
		name = :name,
		description = :description,
		venue_id = :venue_id,
		round_type = :round_type,
		scheduled_at = :scheduled_at,
		active = :active,
		updated_at = :updated_at
		WHERE id = :id
	`
	getRoundQuery = "SELECT * FROM rounds WHERE id = ?"
)

func NewRoundStore(db *sqlx.DB) *RoundStore {
	return &RoundStore{db: db}
}

func (s *RoundStore) CreateRound(ctx context.Context, tx *sqlx.Tx, r *contest.Round) error {
	_, err := tx.NamedExecContext(ctx, createRoundQuery, r)
	return err
}

func (s *RoundStore) UpdateRound(ctx context.Context, tx *sqlx.Tx, r *contest.Round) error {
	return expectOne(tx.NamedExecContext(ctx, updateRoundQuery, r))
}

func (s *RoundStore) GetRound(ctx context.Context, id uuid.UUID) (*contest.Round, error) {
	var r contest.Round
	if err := s.db.GetContext(ctx, &r, s.db.Rebind(getRoundQuery), id); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RoundStore) GetRoundTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*contest.Round, error) {
	var r contest.Round
	if err := tx.GetContext(ctx, &r, tx.Rebind(getRoundQuery), id); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRounds orders by schedule. A nil venueID lists every venue.
func (s *RoundStore) ListRounds(ctx context.Context, venueID *uuid.UUID, activeOnly bool) ([]contest.Round, error) {
	query := "SELECT * FROM rounds WHERE 1 = 1"
	var args []any
	if venueID != nil {
		query += " AND venue_id = ?"
		args = append(args, *venueID)
	}
	if activeOnly {
		query += " AND active = ?"
		args = append(args, true)
	}
	query += " ORDER BY scheduled_at ASC, name ASC"

	rounds := []contest.Round{}
	err := s.db.SelectContext(ctx, &rounds, s.db.Rebind(query), args...)
	return rounds, err
}
