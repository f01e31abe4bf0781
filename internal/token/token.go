package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of backend JWT claims the agent inspects.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Inspection holds claims extracted from a token without signature
// verification. The backend stays authoritative; this exists only so the
// client can skip doomed requests and bind identity to the session.
type Inspection struct {
	UserID    string
	Role      string
	ExpiresAt *time.Time
}

// Inspect parses a JWT without verifying its signature.
func Inspect(tokenString string) (Inspection, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return Inspection{}, fmt.Errorf("failed to parse token: %w", err)
	}

	insp := Inspection{
		UserID: claims.UserID,
		Role:   claims.Role,
	}
	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.Time
		insp.ExpiresAt = &t
	}

	return insp, nil
}

// Expired reports whether the token's exp claim has passed. Tokens without
// an exp claim never expire client-side.
func (i Inspection) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}
