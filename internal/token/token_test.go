package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("whatever"))
	require.NoError(t, err)
	return tok
}

func TestInspect_ExtractsClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	tok := signToken(t, jwt.MapClaims{
		"user_id": "agent-7",
		"role":    "AGENT",
		"exp":     exp.Unix(),
	})

	insp, err := Inspect(tok)
	require.NoError(t, err)
	assert.Equal(t, "agent-7", insp.UserID)
	assert.Equal(t, "AGENT", insp.Role)
	require.NotNil(t, insp.ExpiresAt)
	assert.Equal(t, exp.Unix(), insp.ExpiresAt.Unix())
}

func TestInspect_Malformed(t *testing.T) {
	_, err := Inspect("not-a-jwt")
	require.Error(t, err)
}

func TestInspection_Expired(t *testing.T) {
	now := time.Now()

	past := now.Add(-time.Minute)
	assert.True(t, Inspection{ExpiresAt: &past}.Expired(now))

	future := now.Add(time.Minute)
	assert.False(t, Inspection{ExpiresAt: &future}.Expired(now))

	// tokens without exp never expire client-side
	assert.False(t, Inspection{}.Expired(now))
}
