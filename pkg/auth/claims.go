package auth

import "github.com/golang-jwt/jwt/v5"

// TokenClaims is the subset of the API's access token the client reads.
// The API signs tokens with a secret the client never sees, so these claims
// are informational only: expiry and identity for display and session state.
type TokenClaims struct {
	UserID string `json:"id,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the user id, preferring the explicit id claim over sub.
func (c *TokenClaims) Identity() string {
	if c == nil {
		return ""
	}
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}
