package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/store"
	"github.com/AdamBeresnev/koe-contest/internal/utils"
)

type ResultService struct {
	db            *sqlx.DB
	store         *store.ResultStore
	registrations *store.RegistrationStore
	rounds        *store.RoundStore
	audit         AuditWriter
}

func NewResultService(db *sqlx.DB, store *store.ResultStore, registrations *store.RegistrationStore, rounds *store.RoundStore, audit AuditWriter) *ResultService {
	return &ResultService{db: db, store: store, registrations: registrations, rounds: rounds, audit: audit}
}

type ResultInput struct {
	RegistrationID uuid.UUID
	RoundID        uuid.UUID
	Score          float64
	Position       *int
	Advanced       bool
	Observations   *string
}

// Submit records a score, replacing any earlier result for the same registration and round.
func (s *ResultService) Submit(ctx context.Context, input ResultInput) (*contest.Result, error) {
	results, err := s.SubmitBulk(ctx, []ResultInput{input})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// SubmitBulk upserts every result in one transaction. Any invalid item rejects the whole batch.
func (s *ResultService) SubmitBulk(ctx context.Context, inputs []ResultInput) ([]contest.Result, error) {
	if len(inputs) == 0 {
		return nil, contest.Invalid("results", "at least one result must be provided")
	}

	fe := contest.FieldErrors{}
	for i, in := range inputs {
		prefix := ""
		if len(inputs) > 1 {
			prefix = "results[" + strconv.Itoa(i) + "]."
		}
		validateResult(fe, prefix, in)
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer tx.Rollback()

	out := make([]contest.Result, 0, len(inputs))
	for _, in := range inputs {
		result, err := s.upsert(ctx, tx, in)
		if err != nil {
			return nil, err
		}
		out = append(out, *result)
	}

	if err := tx.Commit(); err != nil {
		return nil, store.Classify(err)
	}
	return out, nil
}

func (s *ResultService) upsert(ctx context.Context, tx *sqlx.Tx, in ResultInput) (*contest.Result, error) {
	if _, err := s.registrations.GetRegistrationTx(ctx, tx, in.RegistrationID); err != nil {
		return nil, referenceError("registration", in.RegistrationID, err)
	}
	if _, err := s.rounds.GetRoundTx(ctx, tx, in.RoundID); err != nil {
		return nil, referenceError("round", in.RoundID, err)
	}

	var previous any
	existing, err := s.store.GetResultByKeyTx(ctx, tx, in.RegistrationID, in.RoundID)
	switch err = store.Classify(err); {
	case err == nil:
		previous = existing
	case !errors.Is(err, contest.ErrNotFound):
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	ts := now()
	result := &contest.Result{
		ID:             newID(),
		RegistrationID: in.RegistrationID,
		RoundID:        in.RoundID,
		Score:          contest.RoundScore(in.Score),
		Position:       in.Position,
		Advanced:       in.Advanced,
		Observations:   utils.TrimmedOrNil(in.Observations),
		EvaluatedAt:    ts,
		UpdatedAt:      ts,
	}
	if err := s.store.UpsertResult(ctx, tx, result); err != nil {
		return nil, fmt.Errorf("failed to save result: %w", store.Classify(err))
	}

	saved, err := s.store.GetResultByKeyTx(ctx, tx, in.RegistrationID, in.RoundID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload result: %w", store.Classify(err))
	}
	if err := appendAudit(ctx, tx, s.audit, contest.ActionResultRecorded, contest.TableResults, saved.ID.String(), previous, saved); err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *ResultService) List(ctx context.Context, roundID, registrationID *uuid.UUID) ([]contest.Result, error) {
	results, err := s.store.ListResults(ctx, roundID, registrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", store.Classify(err))
	}
	return results, nil
}

func validateResult(fe contest.FieldErrors, prefix string, in ResultInput) {
	if in.RegistrationID == uuid.Nil {
		fe.Add(prefix+"registration_id", "registration_id is required")
	}
	if in.RoundID == uuid.Nil {
		fe.Add(prefix+"round_id", "round_id is required")
	}
	if math.IsNaN(in.Score) || in.Score < 0 || contest.RoundScore(in.Score) > contest.MaxScore {
		fe.Add(prefix+"score", fmt.Sprintf("score must be between 0 and %.2f", contest.MaxScore))
	}
	if in.Position != nil && *in.Position < 1 {
		fe.Add(prefix+"position", "position must be at least 1")
	}
}

func referenceError(kind string, id uuid.UUID, err error) error {
	err = store.Classify(err)
	if errors.Is(err, contest.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, contest.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", kind, err)
}
