package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/store"
	"github.com/AdamBeresnev/koe-contest/internal/utils"
)

type RoundService struct {
	db     *sqlx.DB
	store  *store.RoundStore
	venues *store.VenueStore
	audit  AuditWriter
}

func NewRoundService(db *sqlx.DB, store *store.RoundStore, venues *store.VenueStore, audit AuditWriter) *RoundService {
	return &RoundService{db: db, store: store, venues: venues, audit: audit}
}

type RoundInput struct {
	Name        string
	Description *string
	VenueID     uuid.UUID
	Type        string
	ScheduledAt time.Time
}

type RoundPatch struct {
	Name        *string
	Description *string
	VenueID     *uuid.UUID
	Type        *string
	ScheduledAt *time.Time
	Active      *bool
}

func (s *RoundService) Create(ctx context.Context, input RoundInput) (*contest.Round, error) {
	fe := contest.FieldErrors{}
	name := requiredText(fe, "name", input.Name, maxNameLength)
	roundType := contest.RoundType(strings.TrimSpace(input.Type))
	if !roundType.Valid() {
		fe.Add("type", "unknown round type")
	}
	if input.VenueID == uuid.Nil {
		fe.Add("venue_id", "venue_id is required")
	}
	if input.ScheduledAt.IsZero() {
		fe.Add("scheduled_at", "scheduled_at is required")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer tx.Rollback()

	if err := s.requireVenue(ctx, tx, input.VenueID); err != nil {
		return nil, err
	}

	ts := now()
	round := &contest.Round{
		ID:          newID(),
		Name:        name,
		Description: utils.TrimmedOrNil(input.Description),
		VenueID:     input.VenueID,
		Type:        roundType,
		ScheduledAt: input.ScheduledAt.UTC(),
		Active:      true,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := s.store.CreateRound(ctx, tx, round); err != nil {
		return nil, fmt.Errorf("failed to create round: %w", store.Classify(err))
	}
	if err := appendAudit(ctx, tx, s.audit, contest.ActionRoundCreated, contest.TableRounds, round.ID.String(), nil, round); err != nil {
		return nil, err
	}
	return round, store.Classify(tx.Commit())
}

func (s *RoundService) Update(ctx context.Context, id uuid.UUID, patch RoundPatch) (*contest.Round, error) {
	fe := contest.FieldErrors{}
	var name string
	if patch.Name != nil {
		name = requiredText(fe, "name", *patch.Name, maxNameLength)
	}
	if patch.Type != nil && !contest.RoundType(*patch.Type).Valid() {
		fe.Add("type", "unknown round type")
	}
	if patch.ScheduledAt != nil && patch.ScheduledAt.IsZero() {
		fe.Add("scheduled_at", "scheduled_at must be set")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer tx.Rollback()

	round, err := s.store.GetRoundTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", store.Classify(err))
	}
	previous := *round

	if patch.Name != nil {
		round.Name = name
	}
	if patch.Description != nil {
		round.Description = utils.StringOrNil(*patch.Description)
	}
	if patch.VenueID != nil {
		if err := s.requireVenue(ctx, tx, *patch.VenueID); err != nil {
			return nil, err
		}
		round.VenueID = *patch.VenueID
	}
	if patch.Type != nil {
		round.Type = contest.RoundType(*patch.Type)
	}
	if patch.ScheduledAt != nil {
		round.ScheduledAt = patch.ScheduledAt.UTC()
	}
	if patch.Active != nil {
		round.Active = *patch.Active
	}
	round.UpdatedAt = now()

	if err := s.store.UpdateRound(ctx, tx, round); err != nil {
		return nil, fmt.Errorf("failed to update round: %w", store.Classify(err))
	}
	if err := appendAudit(ctx, tx, s.audit, contest.ActionRoundUpdated, contest.TableRounds, id.String(), previous, round); err != nil {
		return nil, err
	}
	return round, store.Classify(tx.Commit())
}

func (s *RoundService) Get(ctx context.Context, id uuid.UUID) (*contest.Round, error) {
	round, err := s.store.GetRound(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", store.Classify(err))
	}
	return round, nil
}

func (s *RoundService) List(ctx context.Context, venueID *uuid.UUID, activeOnly bool) ([]contest.Round, error) {
	rounds, err := s.store.ListRounds(ctx, venueID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", store.Classify(err))
	}
	return rounds, nil
}

func (s *RoundService) requireVenue(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	if _, err := s.venues.GetVenueTx(ctx, tx, id); err != nil {
		return referenceError("venue", id, err)
	}
	return nil
}
