package store

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
)

type RegistrationStore struct {
	db *sqlx.DB
}

const (
	createRegistrationQuery = `
		INSERT INTO registrations (id, full_name, stage_name, phone, email, category, municipality, venue_id, observations, payment_proof, status, created_at, updated_at)
		VALUES (:id, :full_name, :stage_name, :phone, :email, :category, :municipality, :venue_id, :observations, :payment_proof, :status, :created_at, :updated_at)
	`
	updateRegistrationQuery = `
		UPDATE registrations SET
		full_name = :full_name,
		stage_name = :stage_name,
		phone = :phone,
		email = :email,
		category = :category,
		municipality = :municipality,
		venue_id = :venue_id,
		observations = :observations,
		payment_proof = :payment_proof,
		status = :status,
		updated_at = :updated_at
		WHERE id = :id
	`
	getRegistrationQuery = "SELECT * FROM registrations WHERE id = ?"
)

func NewRegistrationStore(db *sqlx.DB) *RegistrationStore {
	return &RegistrationStore{db: db}
}

func (s *RegistrationStore) CreateRegistration(ctx context.Context, tx *sqlx.Tx, r *contest.Registration) error {
	_, err := tx.NamedExecContext(ctx, createRegistrationQuery, r)
	return err
}

// UpdateRegistration writes every mutable column in a single statement.
func (s *RegistrationStore) UpdateRegistration(ctx context.Context, tx *sqlx.Tx, r *contest.Registration) error {
	return expectOne(tx.NamedExecContext(ctx, updateRegistrationQuery, r))
}

func (s *RegistrationStore) GetRegistration(ctx context.Context, id uuid.UUID) (*contest.Registration, error) {
	var r contest.Registration
	if err := s.db.GetContext(ctx, &r, s.db.Rebind(getRegistrationQuery), id); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RegistrationStore) GetRegistrationTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*contest.Registration, error) {
	var r contest.Registration
	if err := tx.GetContext(ctx, &r, tx.Rebind(getRegistrationQuery), id); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRegistrations returns one page, newest first, and the total matching the filter.
func (s *RegistrationStore) ListRegistrations(ctx context.Context, f contest.RegistrationFilter) ([]contest.Registration, int, error) {
	where, args := registrationWhere(f)

	var total int
	if err := s.db.GetContext(ctx, &total, s.db.Rebind("SELECT COUNT(*) FROM registrations"+where), args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM registrations" + where + " ORDER BY id DESC LIMIT ? OFFSET ?"
	items := []contest.Registration{}
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(query), append(args, f.Limit, f.Skip)...); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// CountOpenByVenueTx counts pending and approved registrations referencing a venue.
func (s *RegistrationStore) CountOpenByVenueTx(ctx context.Context, tx *sqlx.Tx, venueID uuid.UUID) (int, error) {
	var n int
	err := tx.GetContext(ctx, &n, tx.Rebind("SELECT COUNT(*) FROM registrations WHERE venue_id = ? AND status IN (?, ?)"),
		venueID, contest.StatusPending, contest.StatusApproved)
	return n, err
}

func registrationWhere(f contest.RegistrationFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, *f.Status)
	}
	if f.Category != nil {
		clauses = append(clauses, "category = ?")
		args = append(args, *f.Category)
	}
	if f.VenueID != nil {
		clauses = append(clauses, "venue_id = ?")
		args = append(args, *f.VenueID)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		var or []string
		for _, col := range []string{"full_name", "stage_name", "phone", "COALESCE(email, '')", "municipality"} {
			or = append(or, "LOWER("+col+") LIKE ? ESCAPE '\\'")
			args = append(args, pattern)
		}
		clauses = append(clauses, "("+strings.Join(or, " OR ")+")")
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
