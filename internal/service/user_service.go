package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/koe-contest/internal/auth"
	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/store"
	users "github.com/AdamBeresnev/koe-contest/internal/user"
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

type UserService struct {
	db    *sqlx.DB
	store *store.UserStore
	audit AuditWriter
}

func NewUserService(db *sqlx.DB, store *store.UserStore, audit AuditWriter) *UserService {
	return &UserService{db: db, store: store, audit: audit}
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*users.User, error) {
	fe := contest.FieldErrors{}
	name := requiredText(fe, "name", input.Name, maxNameLength)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !validEmail(email) {
		fe.Add("email", "email must be a valid address")
	}
	if utf8.RuneCountInString(input.Password) < minPasswordLength {
		fe.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	} else if len(input.Password) > maxPasswordBytes {
		fe.Add("password", fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
	role := users.Role(input.Role)
	if role == "" {
		role = users.RoleParticipant
	}
	if !role.Valid() {
		fe.Add("role", "role must be admin, judge or participant")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	ts := now()
	user := &users.User{
		ID:           newID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer tx.Rollback()

	if err := s.store.CreateUser(ctx, tx, user); err != nil {
		err = store.Classify(err)
		if errors.Is(err, contest.ErrConflict) {
			return nil, fmt.Errorf("email already registered: %w", contest.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := appendAudit(ctx, tx, s.audit, contest.ActionUserCreated, contest.TableUsers, user.ID.String(), nil, user); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, store.Classify(err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", store.Classify(err))
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator when no admin exists yet. It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	n, err := s.store.CountUsersByRole(ctx, users.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to count admins: %w", store.Classify(err))
	}
	if n > 0 {
		return false, nil
	}
	if name == "" {
		name = "Administrator"
	}
	_, err = s.CreateUser(ctx, CreateUserInput{Name: name, Email: email, Password: password, Role: string(users.RoleAdmin)})
	if err != nil {
		return false, err
	}
	return true, nil
}
