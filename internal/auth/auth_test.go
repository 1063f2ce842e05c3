package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	users "github.com/AdamBeresnev/koe-contest/internal/user"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueAndParse(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	u := &users.User{ID: uuid.New(), Role: users.RoleJudge}
	token, expiresAt, err := issuer.Issue(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	id, claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
	assert.Equal(t, users.RoleJudge, claims.Role)
}

func TestParseRejectsBadTokens(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	other, err := NewTokenIssuer("another-secret-of-enough-length", time.Hour)
	require.NoError(t, err)

	u := &users.User{ID: uuid.New(), Role: users.RoleAdmin}
	foreign, _, err := other.Issue(u)
	require.NoError(t, err)

	expiredIssuer, err := NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredIssuer.Issue(u)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   u.ID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      expired,
		"alg none":     none,
		"empty":        "",
	} {
		_, _, err := issuer.Parse(token)
		assert.ErrorIs(t, err, contest.ErrUnauthenticated, name)
	}
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("short", time.Hour)
	require.Error(t, err)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
	assert.False(t, CheckPassword("", "correct horse"))
}

func TestAuthorize(t *testing.T) {
	judge := &users.User{Role: users.RoleJudge}

	assert.ErrorIs(t, Authorize(nil, users.Staff...), contest.ErrUnauthenticated)
	assert.NoError(t, Authorize(judge, users.Staff...))
	assert.ErrorIs(t, Authorize(judge, users.AdminOnly...), contest.ErrForbidden)
}

func TestExtractBearerToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, ok := ExtractBearerToken(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "bearer abc.def")
	token, ok := ExtractBearerToken(r)
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)

	r.Header.Set("Authorization", "Basic Zm9v")
	_, ok = ExtractBearerToken(r)
	assert.False(t, ok)
}
