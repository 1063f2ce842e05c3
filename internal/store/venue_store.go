package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
)

type VenueStore struct {
	db *sqlx.DB
}

const (
	createVenueQuery = `
		INSERT INTO venues (id, name, state, municipality, address, contact_name, contact_phone, contact_email, capacity, active, created_at, updated_at)
		VALUES (:id, :name, :state, :municipality, :address, :contact_name, :contact_phone, :contact_email, :capacity, :active, :created_at, :updated_at)
	`
	updateVenueQuery = `
		UPDATE venues SET
		name = :name,
		state = :state,
		municipality = :municipality,
		address = :address,
		contact_name = :contact_name,
		contact_phone = :contact_phone,
		contact_email = :contact_email,
		capacity = :capacity,
		active = :active,
		updated_at = :updated_at
		WHERE id = :id
	`
	getVenueQuery = "SELECT * FROM venues WHERE id = ?"
)

func NewVenueStore(db *sqlx.DB) *VenueStore {
	return &VenueStore{db: db}
}

func (s *VenueStore) CreateVenue(ctx context.Context, tx *sqlx.Tx, v *contest.Venue) error {
	_, err := tx.NamedExecContext(ctx, createVenueQuery, v)
	return err
}

func (s *VenueStore) UpdateVenue(ctx context.Context, tx *sqlx.Tx, v *contest.Venue) error {
	return expectOne(tx.NamedExecContext(ctx, updateVenueQuery, v))
}

func (s *VenueStore) GetVenue(ctx context.Context, id uuid.UUID) (*contest.Venue, error) {
	var v contest.Venue
	if err := s.db.GetContext(ctx, &v, s.db.Rebind(getVenueQuery), id); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *VenueStore) GetVenueTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*contest.Venue, error) {
	var v contest.Venue
	if err := tx.GetContext(ctx, &v, tx.Rebind(getVenueQuery), id); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *VenueStore) ListVenues(ctx context.Context, includeInactive bool) ([]contest.Venue, error) {
	venues := []contest.Venue{}
	var err error
	if includeInactive {
		err = s.db.SelectContext(ctx, &venues, "SELECT * FROM venues ORDER BY state ASC, name ASC")
	} else {
		err = s.db.SelectContext(ctx, &venues, s.db.Rebind("SELECT * FROM venues WHERE active = ? ORDER BY state ASC, name ASC"), true)
	}
	return venues, err
}
