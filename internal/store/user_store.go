package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	users "github.com/AdamBeresnev/koe-contest/internal/user"
)

type UserStore struct {
	db *sqlx.DB
}

const (
	getUserQuery        = "SELECT * FROM users WHERE id = ?"
	getUserByEmailQuery = "SELECT * FROM users WHERE email = ?"
	createUserQuery     = `
		INSERT INTO users (id, name, email, password_hash, role, active, created_at, updated_at) VALUES
		(:id, :name, :email, :password_hash, :role, :active, :created_at, :updated_at)
	`
	countUsersByRoleQuery = "SELECT COUNT(*) FROM users WHERE role = ?"
)

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var user users.User
	if err := s.db.GetContext(ctx, &user, s.db.Rebind(getUserQuery), id); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail expects an already lower-cased address.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	var user users.User
	if err := s.db.GetContext(ctx, &user, s.db.Rebind(getUserByEmailQuery), email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) CreateUser(ctx context.Context, tx *sqlx.Tx, user *users.User) error {
	_, err := tx.NamedExecContext(ctx, createUserQuery, user)
	return err
}

func (s *UserStore) CountUsersByRole(ctx context.Context, role users.Role) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(countUsersByRoleQuery), role)
	return n, err
}
