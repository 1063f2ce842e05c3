package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AdamBeresnev/koe-contest/internal/auth"
	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/store"
	users "github.com/AdamBeresnev/koe-contest/internal/user"
)

type AuthService struct {
	users  *store.UserStore
	tokens *auth.TokenIssuer
}

func NewAuthService(users *store.UserStore, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

type Credential struct {
	Token     string      `json:"access_token"`
	TokenType string      `json:"token_type"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *users.User `json:"user"`
}

// Authenticate resolves an active user by email and password. Unknown email, wrong password and
// inactive account all return the same ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		err = store.Classify(err)
		if !errors.Is(err, contest.ErrNotFound) {
			return nil, err
		}
		auth.CheckPassword("", password)
		return nil, contest.ErrUnauthenticated
	}
	if !auth.CheckPassword(user.PasswordHash, password) || !user.Active {
		return nil, contest.ErrUnauthenticated
	}
	return user, nil
}

func (s *AuthService) IssueCredential(user *users.User) (*Credential, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Credential{Token: token, TokenType: "bearer", ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Credential, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.IssueCredential(user)
}

// ValidateCredential verifies the token and that its subject still exists and is active.
func (s *AuthService) ValidateCredential(ctx context.Context, token string) (*users.User, error) {
	id, _, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		err = store.Classify(err)
		if errors.Is(err, contest.ErrNotFound) {
			return nil, contest.ErrUnauthenticated
		}
		return nil, err
	}
	if !user.Active {
		return nil, contest.ErrUnauthenticated
	}
	return user, nil
}
