package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
)

type StatisticsStore struct {
	db *sqlx.DB
}

func NewStatisticsStore(db *sqlx.DB) *StatisticsStore {
	return &StatisticsStore{db: db}
}

// Snapshot holds the raw projections read inside one transaction.
type Snapshot struct {
	Registrations  int
	ActiveVenues   int
	ActiveRounds   int
	Videos         int
	ApprovedVideos int
	ByStatus       []contest.GroupCount
	ByCategory     []contest.GroupCount
	ByVenue        []contest.GroupCount
	ByMunicipality []contest.GroupCount
}

func (s *StatisticsStore) SnapshotTx(ctx context.Context, tx *sqlx.Tx) (*Snapshot, error) {
	var snap Snapshot

	counts := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&snap.Registrations, "SELECT COUNT(*) FROM registrations", nil},
		{&snap.ActiveVenues, "SELECT COUNT(*) FROM venues WHERE active = ?", []any{true}},
		{&snap.ActiveRounds, "SELECT COUNT(*) FROM rounds WHERE active = ?", []any{true}},
		{&snap.Videos, "SELECT COUNT(*) FROM videos", nil},
		{&snap.ApprovedVideos, "SELECT COUNT(*) FROM videos WHERE approved = ?", []any{true}},
	}
	for _, c := range counts {
		if err := tx.GetContext(ctx, c.dest, tx.Rebind(c.query), c.args...); err != nil {
			return nil, err
		}
	}

	groups := []struct {
		dest  *[]contest.GroupCount
		query string
		args  []any
	}{
		{&snap.ByStatus, "SELECT status AS group_key, COUNT(*) AS total FROM registrations GROUP BY status", nil},
		{&snap.ByCategory, "SELECT category AS group_key, COUNT(*) AS total FROM registrations GROUP BY category ORDER BY category", nil},
		{&snap.ByMunicipality, "SELECT municipality AS group_key, COUNT(*) AS total FROM registrations GROUP BY municipality ORDER BY municipality", nil},
		{&snap.ByVenue, `SELECT v.name AS group_key, COUNT(r.id) AS total
			FROM venues v LEFT JOIN registrations r ON r.venue_id = v.id
			WHERE v.active = ?
			GROUP BY v.id, v.name ORDER BY v.name`, []any{true}},
	}
	for _, g := range groups {
		*g.dest = []contest.GroupCount{}
		if err := tx.SelectContext(ctx, g.dest, tx.Rebind(g.query), g.args...); err != nil {
			return nil, err
		}
	}

	return &snap, nil
}
