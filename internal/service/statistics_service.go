package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/store"
)

type StatisticsService struct {
	db    *sqlx.DB
	store *store.StatisticsStore
}

func NewStatisticsService(db *sqlx.DB, store *store.StatisticsStore) *StatisticsService {
	return &StatisticsService{db: db, store: store}
}

// Statistics computes the aggregate snapshot from a single read transaction.
func (s *StatisticsService) Statistics(ctx context.Context) (*contest.Statistics, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer tx.Rollback()

	snap, err := s.store.SnapshotTx(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics: %w", store.Classify(err))
	}
	if err := tx.Commit(); err != nil {
		return nil, store.Classify(err)
	}

	stats := &contest.Statistics{
		TotalRegistrations: snap.Registrations,
		ActiveVenues:       snap.ActiveVenues,
		ActiveRounds:       snap.ActiveRounds,
		TotalVideos:        snap.Videos,
		ApprovedVideos:     snap.ApprovedVideos,
		ByCategory:         make(map[string]int, len(contest.Categories)),
		ByVenue:            toMap(snap.ByVenue),
		ByMunicipality:     toMap(snap.ByMunicipality),
	}
	for _, c := range contest.Categories {
		stats.ByCategory[string(c)] = 0
	}
	for _, g := range snap.ByCategory {
		stats.ByCategory[g.Key] += g.Count
	}
	for _, g := range snap.ByStatus {
		switch contest.RegistrationStatus(g.Key) {
		case contest.StatusPending:
			stats.PendingRegistrations = g.Count
		case contest.StatusApproved:
			stats.ApprovedRegistrations = g.Count
		case contest.StatusRejected:
			stats.RejectedRegistrations = g.Count
		}
	}
	return stats, nil
}

// toMap sums duplicate keys, which happens for venues sharing a name.
func toMap(groups []contest.GroupCount) map[string]int {
	m := make(map[string]int, len(groups))
	for _, g := range groups {
		m[g.Key] += g.Count
	}
	return m
}
