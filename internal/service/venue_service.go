package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/store"
	"github.com/AdamBeresnev/koe-contest/internal/utils"
)

type VenueService struct {
	db            *sqlx.DB
	store         *store.VenueStore
	registrations *store.RegistrationStore
	audit         AuditWriter
}

func NewVenueService(db *sqlx.DB, store *store.VenueStore, registrations *store.RegistrationStore, audit AuditWriter) *VenueService {
	return &VenueService{db: db, store: store, registrations: registrations, audit: audit}
}

type VenueInput struct {
	Name         string
	State        string
	Municipality string
	Address      *string
	ContactName  *string
	ContactPhone *string
	ContactEmail *string
	Capacity     int
}

type VenuePatch struct {
	Name         *string
	State        *string
	Municipality *string
	Address      *string
	ContactName  *string
	ContactPhone *string
	ContactEmail *string
	Capacity     *int
	Active       *bool
}

func (s *VenueService) Create(ctx context.Context, input VenueInput) (*contest.Venue, error) {
	fe := contest.FieldErrors{}
	name := requiredText(fe, "name", input.Name, maxNameLength)
	state := requiredText(fe, "state", input.State, maxNameLength)
	municipality := requiredText(fe, "municipality", input.Municipality, maxNameLength)
	contactEmail := optionalEmail(fe, input.ContactEmail)
	if input.Capacity < 0 {
		fe.Add("capacity", "capacity must not be negative")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	ts := now()
	venue := &contest.Venue{
		ID:           newID(),
		Name:         name,
		State:        state,
		Municipality: municipality,
		Address:      utils.TrimmedOrNil(input.Address),
		ContactName:  utils.TrimmedOrNil(input.ContactName),
		ContactPhone: utils.TrimmedOrNil(input.ContactPhone),
		ContactEmail: contactEmail,
		Capacity:     input.Capacity,
		Active:       true,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer tx.Rollback()

	if err := s.store.CreateVenue(ctx, tx, venue); err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", store.Classify(err))
	}
	if err := appendAudit(ctx, tx, s.audit, contest.ActionVenueCreated, contest.TableVenues, venue.ID.String(), nil, venue); err != nil {
		return nil, err
	}
	return venue, store.Classify(tx.Commit())
}

func (s *VenueService) Get(ctx context.Context, id uuid.UUID) (*contest.Venue, error) {
	venue, err := s.store.GetVenue(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", store.Classify(err))
	}
	return venue, nil
}

func (s *VenueService) List(ctx context.Context, includeInactive bool) ([]contest.Venue, error) {
	venues, err := s.store.ListVenues(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", store.Classify(err))
	}
	return venues, nil
}

func (s *VenueService) Update(ctx context.Context, id uuid.UUID, patch VenuePatch) (*contest.Venue, error) {
	fe := contest.FieldErrors{}
	var name, state, municipality string
	if patch.Name != nil {
		name = requiredText(fe, "name", *patch.Name, maxNameLength)
	}
	if patch.State != nil {
		state = requiredText(fe, "state", *patch.State, maxNameLength)
	}
	if patch.Municipality != nil {
		municipality = requiredText(fe, "municipality", *patch.Municipality, maxNameLength)
	}
	contactEmail := optionalEmail(fe, patch.ContactEmail)
	if patch.Capacity != nil && *patch.Capacity < 0 {
		fe.Add("capacity", "capacity must not be negative")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer tx.Rollback()

	venue, err := s.store.GetVenueTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", store.Classify(err))
	}
	previous := *venue
	action := contest.ActionVenueUpdated

	if patch.Name != nil {
		venue.Name = name
	}
	if patch.State != nil {
		venue.State = state
	}
	if patch.Municipality != nil {
		venue.Municipality = municipality
	}
	if patch.Address != nil {
		venue.Address = utils.StringOrNil(*patch.Address)
	}
	if patch.ContactName != nil {
		venue.ContactName = utils.StringOrNil(*patch.ContactName)
	}
	if patch.ContactPhone != nil {
		venue.ContactPhone = utils.StringOrNil(*patch.ContactPhone)
	}
	if patch.ContactEmail != nil {
		venue.ContactEmail = contactEmail
	}
	if patch.Capacity != nil {
		venue.Capacity = *patch.Capacity
	}
	if patch.Active != nil {
		if !*patch.Active && venue.Active {
			if err := s.ensureNoOpenRegistrations(ctx, tx, id); err != nil {
				return nil, err
			}
			action = contest.ActionVenueDeactivated
		}
		venue.Active = *patch.Active
	}
	venue.UpdatedAt = now()

	if err := s.store.UpdateVenue(ctx, tx, venue); err != nil {
		return nil, fmt.Errorf("failed to update venue: %w", store.Classify(err))
	}
	if err := appendAudit(ctx, tx, s.audit, action, contest.TableVenues, id.String(), previous, venue); err != nil {
		return nil, err
	}
	return venue, store.Classify(tx.Commit())
}

// Delete deactivates the venue. Venues with pending or approved registrations are refused with ErrConflict.
func (s *VenueService) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.Update(ctx, id, VenuePatch{Active: utils.Ptr(false)})
	return err
}

func (s *VenueService) ensureNoOpenRegistrations(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	n, err := s.registrations.CountOpenByVenueTx(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("failed to count venue registrations: %w", store.Classify(err))
	}
	if n > 0 {
		return fmt.Errorf("venue has %d open %s: %w", n, plural(n, "registration"), contest.ErrConflict)
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
