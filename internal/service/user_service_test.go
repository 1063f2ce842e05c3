package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamBeresnev/koe-contest/internal/auth"
	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/store"
	users "github.com/AdamBeresnev/koe-contest/internal/user"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthService(t *testing.T, f *fixture) *AuthService {
	t.Helper()
	tokens, err := auth.NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	return NewAuthService(f.userStore, tokens)
}

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.userService.CreateUser(ctx, CreateUserInput{Name: "Juez", Email: " Juez@Koe.MX ", Password: "suficiente", Role: "judge"})
	require.NoError(t, err)
	assert.Equal(t, "juez@koe.mx", u.Email)
	assert.Equal(t, users.RoleJudge, u.Role)
	assert.NotEqual(t, "suficiente", u.PasswordHash)

	_, err = f.userService.CreateUser(ctx, CreateUserInput{Name: "Otro", Email: "juez@koe.mx", Password: "suficiente"})
	assert.ErrorIs(t, err, contest.ErrConflict)

	_, err = f.userService.CreateUser(ctx, CreateUserInput{Name: "X", Email: "x@koe.mx", Password: "short", Role: "root"})
	var validationErr *contest.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "password")
	assert.Contains(t, validationErr.Fields, "role")

	participant, err := f.userService.CreateUser(ctx, CreateUserInput{Name: "P", Email: "p@koe.mx", Password: "suficiente"})
	require.NoError(t, err)
	assert.Equal(t, users.RoleParticipant, participant.Role)
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.userService.EnsureAdmin(ctx, "", "", "")
	require.NoError(t, err)
	assert.False(t, created, "nothing configured")

	created, err = f.userService.EnsureAdmin(ctx, "", "root@koe.mx", "bootstrap-pass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.userService.EnsureAdmin(ctx, "Again", "other@koe.mx", "bootstrap-pass")
	require.NoError(t, err)
	assert.False(t, created, "an admin already exists")

	u, err := f.userStore.GetUserByEmail(ctx, "root@koe.mx")
	require.NoError(t, err)
	assert.Equal(t, users.RoleAdmin, u.Role)
	assert.Equal(t, "Administrator", u.Name)
}

func TestLoginAndValidateCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	authService := newAuthService(t, f)

	u, err := f.userService.CreateUser(ctx, CreateUserInput{Name: "Juez", Email: "juez@koe.mx", Password: "suficiente", Role: "judge"})
	require.NoError(t, err)

	credential, err := authService.Login(ctx, "JUEZ@koe.mx", "suficiente")
	require.NoError(t, err)
	assert.Equal(t, "bearer", credential.TokenType)
	assert.Equal(t, u.ID, credential.User.ID)
	assert.True(t, credential.ExpiresAt.After(time.Now()))

	principal, err := authService.ValidateCredential(ctx, credential.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, principal.ID)

	_, err = authService.ValidateCredential(ctx, credential.Token+"x")
	assert.ErrorIs(t, err, contest.ErrUnauthenticated)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	authService := newAuthService(t, f)

	_, err := f.userService.CreateUser(ctx, CreateUserInput{Name: "Juez", Email: "juez@koe.mx", Password: "suficiente"})
	require.NoError(t, err)

	_, wrongPassword := authService.Login(ctx, "juez@koe.mx", "incorrecta")
	_, unknownEmail := authService.Login(ctx, "nadie@koe.mx", "suficiente")

	require.ErrorIs(t, wrongPassword, contest.ErrUnauthenticated)
	require.ErrorIs(t, unknownEmail, contest.ErrUnauthenticated)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestCreateUserIsAudited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.userService.CreateUser(ctx, CreateUserInput{Name: "Juez", Email: "juez@koe.mx", Password: "suficiente", Role: "judge"})
	require.NoError(t, err)
	events := f.events(t, u.ID.String())
	require.Len(t, events, 1)
	assert.Equal(t, contest.ActionUserCreated, events[0].Action)
	assert.Equal(t, contest.TableUsers, events[0].TableName)
	assert.Nil(t, events[0].UserID, "system actor")
	require.NotNil(t, events[0].NewValues)
	assert.NotContains(t, *events[0].NewValues, u.PasswordHash)
	assert.NotContains(t, *events[0].NewValues, "password")

	svc := NewUserService(f.db, f.userStore, failingAuditWriter{})
	_, err = svc.CreateUser(ctx, CreateUserInput{Name: "Otro", Email: "otro@koe.mx", Password: "suficiente"})
	require.Error(t, err)
	_, err = f.userStore.GetUserByEmail(ctx, "otro@koe.mx")
	assert.ErrorIs(t, store.Classify(err), contest.ErrNotFound)
}
