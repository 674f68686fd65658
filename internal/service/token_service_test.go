package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-api/internal/models"
)

func TestTokenServiceRoundTripsSubject(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour, "internship-api")

	token, expiresAt, err := tokens.Issue(models.User{ID: 42, Role: models.RoleHOD})
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	id, err := tokens.Parse(token)
	require.NoError(t, err)
	require.Equal(t, uint(42), id)
}

func TestTokenServiceRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := NewTokenService("secret", time.Hour, "internship-api")
	token, _, err := issuer.Issue(models.User{ID: 1, Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = NewTokenService("other-secret", time.Hour, "internship-api").Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenService("secret", time.Hour, "internship-api").(*tokenService)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
