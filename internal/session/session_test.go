package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omix2003/courierlink/internal/model"
	"github.com/omix2003/courierlink/internal/testutil"
)

func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"user_id": "agent-1", "role": "AGENT", "exp": exp.Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestSession_SetToken_Valid(t *testing.T) {
	s := New(testutil.MakeNoopLogger())
	assert.False(t, s.Authenticated())

	require.NoError(t, s.SetToken(signToken(t, time.Now().Add(time.Hour))))
	assert.True(t, s.Authenticated())
	assert.Equal(t, "agent-1", s.UserID())
	assert.NotEmpty(t, s.Token())
}

func TestSession_SetToken_Expired(t *testing.T) {
	s := New(testutil.MakeNoopLogger())

	err := s.SetToken(signToken(t, time.Now().Add(-time.Hour)))
	require.ErrorIs(t, err, model.ErrTokenExpired)
	assert.False(t, s.Authenticated())
}

func TestSession_SetToken_Malformed(t *testing.T) {
	s := New(testutil.MakeNoopLogger())
	require.Error(t, s.SetToken("garbage"))
}

func TestSession_SetToken_Rebind_Rejected(t *testing.T) {
	s := New(testutil.MakeNoopLogger())
	require.NoError(t, s.SetToken(signToken(t, time.Now().Add(time.Hour))))

	err := s.SetToken(signToken(t, time.Now().Add(2*time.Hour)))
	require.ErrorIs(t, err, model.ErrSessionBound)

	// replacing credentials goes through Close first
	s.Close()
	require.NoError(t, s.SetToken(signToken(t, time.Now().Add(time.Hour))))
	assert.True(t, s.Authenticated())
}

func TestSession_Close_RunsTeardownsOnce_InReverseOrder(t *testing.T) {
	s := New(testutil.MakeNoopLogger())
	require.NoError(t, s.SetToken(signToken(t, time.Now().Add(time.Hour))))

	var order []string
	s.OnTeardown(func() { order = append(order, "first") })
	s.OnTeardown(func() { order = append(order, "second") })

	s.Close()
	assert.Equal(t, []string{"second", "first"}, order)
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())

	// second close is a no-op
	s.Close()
	assert.Equal(t, []string{"second", "first"}, order)
}
