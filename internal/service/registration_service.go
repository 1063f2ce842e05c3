package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/requesttrace"
	"github.com/AdamBeresnev/koe-contest/internal/store"
	"github.com/AdamBeresnev/koe-contest/internal/utils"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
	maxNameLength    = 200
	maxPhoneLength   = 30
)

// RegistrationService owns the registration lifecycle. Every mutation commits together with its audit event.
type RegistrationService struct {
	db           *sqlx.DB
	store        *store.RegistrationStore
	venues       *store.VenueStore
	audit        AuditWriter
	createPolicy AuditCreatePolicy
}

func NewRegistrationService(db *sqlx.DB, store *store.RegistrationStore, venues *store.VenueStore, audit AuditWriter, createPolicy AuditCreatePolicy) *RegistrationService {
	return &RegistrationService{db: db, store: store, venues: venues, audit: audit, createPolicy: createPolicy}
}

type CreateRegistrationInput struct {
	FullName     string
	StageName    string
	Phone        string
	Email        *string
	Category     string
	Municipality string
	VenueID      *uuid.UUID
	Observations *string
}

// RegistrationPatch lists the editable fields. Nil means unchanged; status is edited through SetStatus only.
type RegistrationPatch struct {
	FullName     *string
	StageName    *string
	Phone        *string
	Email        *string
	Category     *string
	Municipality *string
	VenueID      *uuid.UUID
	Observations *string
}

func (p RegistrationPatch) empty() bool {
	return p.FullName == nil && p.StageName == nil && p.Phone == nil && p.Email == nil &&
		p.Category == nil && p.Municipality == nil && p.VenueID == nil && p.Observations == nil
}

type statusSnapshot struct {
	Status       contest.RegistrationStatus `json:"status"`
	Observations *string                    `json:"observations"`
}

func (s *RegistrationService) Create(ctx context.Context, input CreateRegistrationInput) (*contest.Registration, error) {
	fe := contest.FieldErrors{}
	fullName := requiredText(fe, "full_name", input.FullName, maxNameLength)
	stageName := requiredText(fe, "stage_name", input.StageName, maxNameLength)
	phone := requiredText(fe, "phone", input.Phone, maxPhoneLength)
	municipality := requiredText(fe, "municipality", input.Municipality, maxNameLength)
	email := optionalEmail(fe, input.Email)

	category := contest.DefaultCategory
	if c := strings.TrimSpace(input.Category); c != "" {
		category = contest.Category(c)
		if !category.Valid() {
			fe.Add("category", fmt.Sprintf("category must be one of %v", contest.Categories))
		}
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer tx.Rollback()

	if input.VenueID != nil {
		if err := s.requireActiveVenue(ctx, tx, *input.VenueID); err != nil {
			return nil, err
		}
	}

	ts := now()
	registration := &contest.Registration{
		ID:           newID(),
		FullName:     fullName,
		StageName:    stageName,
		Phone:        phone,
		Email:        email,
		Category:     category,
		Municipality: municipality,
		VenueID:      input.VenueID,
		Observations: utils.TrimmedOrNil(input.Observations),
		Status:       contest.StatusPending,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	if err := s.store.CreateRegistration(ctx, tx, registration); err != nil {
		return nil, fmt.Errorf("failed to create registration: %w", store.Classify(err))
	}

	if s.createPolicy.applies(requesttrace.FromContextOrSystem(ctx)) {
		err := appendAudit(ctx, tx, s.audit, contest.ActionRegistrationCreated, contest.TableRegistrations,
			registration.ID.String(), nil, auditView(registration))
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, store.Classify(err)
	}
	return registration, nil
}

func (s *RegistrationService) Get(ctx context.Context, id uuid.UUID) (*contest.Registration, error) {
	registration, err := s.store.GetRegistration(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", store.Classify(err))
	}
	return registration, nil
}

func (s *RegistrationService) List(ctx context.Context, f contest.RegistrationFilter) (*contest.RegistrationPage, error) {
	fe := contest.FieldErrors{}
	if f.Skip < 0 {
		fe.Add("skip", "skip must not be negative")
	}
	if f.Limit == 0 {
		f.Limit = defaultPageLimit
	} else if f.Limit < 0 || f.Limit > maxPageLimit {
		fe.Add("limit", fmt.Sprintf("limit must be between 1 and %d", maxPageLimit))
	}
	if f.Status != nil && !f.Status.Valid() {
		fe.Add("status", "unknown status")
	}
	if f.Category != nil && !f.Category.Valid() {
		fe.Add("category", "unknown category")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	items, total, err := s.store.ListRegistrations(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", store.Classify(err))
	}
	return &contest.RegistrationPage{Items: items, Total: total, Skip: f.Skip, Limit: f.Limit}, nil
}

// SetStatus moves a registration to any status. Observations are replaced only when supplied.
func (s *RegistrationService) SetStatus(ctx context.Context, id uuid.UUID, status contest.RegistrationStatus, observations *string) (*contest.Registration, error) {
	if !status.Valid() {
		return nil, contest.Invalid("status", fmt.Sprintf("status must be one of %v", contest.Statuses))
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer tx.Rollback()

	registration, err := s.store.GetRegistrationTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", store.Classify(err))
	}

	previous := statusSnapshot{Status: registration.Status, Observations: registration.Observations}

	registration.Status = status
	if observations != nil {
		registration.Observations = utils.StringOrNil(*observations)
	}
	registration.UpdatedAt = now()

	if err := s.store.UpdateRegistration(ctx, tx, registration); err != nil {
		return nil, fmt.Errorf("failed to update registration status: %w", store.Classify(err))
	}

	next := statusSnapshot{Status: registration.Status, Observations: registration.Observations}
	err = appendAudit(ctx, tx, s.audit, contest.StatusChangedAction(previous.Status, status),
		contest.TableRegistrations, id.String(), previous, next)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, store.Classify(err)
	}
	return registration, nil
}

// UpdateFields applies a partial edit and records the prior and new value of each supplied field.
func (s *RegistrationService) UpdateFields(ctx context.Context, id uuid.UUID, patch RegistrationPatch) (*contest.Registration, error) {
	if patch.empty() {
		return nil, contest.Invalid("payload", "at least one field must be provided")
	}

	fe := contest.FieldErrors{}
	var (
		fullName, stageName, phone, municipality string
		category                                 contest.Category
	)
	if patch.FullName != nil {
		fullName = requiredText(fe, "full_name", *patch.FullName, maxNameLength)
	}
	if patch.StageName != nil {
		stageName = requiredText(fe, "stage_name", *patch.StageName, maxNameLength)
	}
	if patch.Phone != nil {
		phone = requiredText(fe, "phone", *patch.Phone, maxPhoneLength)
	}
	if patch.Municipality != nil {
		municipality = requiredText(fe, "municipality", *patch.Municipality, maxNameLength)
	}
	email := optionalEmail(fe, patch.Email)
	if patch.Category != nil {
		category = contest.Category(strings.TrimSpace(*patch.Category))
		if !category.Valid() {
			fe.Add("category", fmt.Sprintf("category must be one of %v", contest.Categories))
		}
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer tx.Rollback()

	registration, err := s.store.GetRegistrationTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", store.Classify(err))
	}

	previous := map[string]any{}
	next := map[string]any{}
	track := func(field string, before, after any) {
		previous[field] = before
		next[field] = after
	}

	if patch.FullName != nil {
		track("full_name", registration.FullName, fullName)
		registration.FullName = fullName
	}
	if patch.StageName != nil {
		track("stage_name", registration.StageName, stageName)
		registration.StageName = stageName
	}
	if patch.Phone != nil {
		track("phone", registration.Phone, phone)
		registration.Phone = phone
	}
	if patch.Email != nil {
		track("email", registration.Email, email)
		registration.Email = email
	}
	if patch.Category != nil {
		track("category", registration.Category, category)
		registration.Category = category
	}
	if patch.Municipality != nil {
		track("municipality", registration.Municipality, municipality)
		registration.Municipality = municipality
	}
	if patch.VenueID != nil {
		if err := s.requireActiveVenue(ctx, tx, *patch.VenueID); err != nil {
			return nil, err
		}
		track("venue_id", registration.VenueID, patch.VenueID)
		registration.VenueID = patch.VenueID
	}
	if patch.Observations != nil {
		observations := utils.StringOrNil(*patch.Observations)
		track("observations", registration.Observations, observations)
		registration.Observations = observations
	}
	registration.UpdatedAt = now()

	if err := s.store.UpdateRegistration(ctx, tx, registration); err != nil {
		return nil, fmt.Errorf("failed to update registration: %w", store.Classify(err))
	}

	err = appendAudit(ctx, tx, s.audit, contest.ActionRegistrationUpdated, contest.TableRegistrations, id.String(), previous, next)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, store.Classify(err)
	}
	return registration, nil
}

func (s *RegistrationService) requireActiveVenue(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	venue, err := s.venues.GetVenueTx(ctx, tx, id)
	if err != nil {
		return referenceError("venue", id, err)
	}
	if !venue.Active {
		return fmt.Errorf("venue %s is inactive: %w", id, contest.ErrNotFound)
	}
	return nil
}

// auditView is the registration snapshot stored in audit events. The proof payload is summarised.
func auditView(r *contest.Registration) map[string]any {
	return map[string]any{
		"full_name":         r.FullName,
		"stage_name":        r.StageName,
		"phone":             r.Phone,
		"email":             r.Email,
		"category":          r.Category,
		"municipality":      r.Municipality,
		"venue_id":          r.VenueID,
		"observations":      r.Observations,
		"status":            r.Status,
		"has_payment_proof": r.HasPaymentProof(),
	}
}

func requiredText(fe contest.FieldErrors, field, value string, maxLen int) string {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		fe.Add(field, field+" is required")
	case utf8.RuneCountInString(value) > maxLen:
		fe.Add(field, fmt.Sprintf("%s must be at most %d characters", field, maxLen))
	}
	return value
}

// optionalEmail returns nil for an absent or blank address.
func optionalEmail(fe contest.FieldErrors, value *string) *string {
	email := utils.TrimmedOrNil(value)
	if email == nil {
		return nil
	}
	if !validEmail(*email) {
		fe.Add("email", "email must be a valid address")
		return nil
	}
	lower := strings.ToLower(*email)
	return &lower
}

// validEmail accepts a bare RFC 5322 address whose domain has at least two labels.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	domain := s[strings.LastIndex(s, "@")+1:]
	return strings.Contains(domain, ".") && !strings.Contains(domain, "..") &&
		!strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
