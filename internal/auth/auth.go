package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Provider exposes the authentication state the store re-derives its
// own state from. It is a read-only dependency: the store never mutates
// credentials.
type Provider interface {
	// Loading reports whether authentication is still unresolved.
	Loading() bool
	// Authenticated reports whether the session has a valid identity.
	Authenticated() bool
	// UserID returns the current user id, or "" when unknown.
	UserID() string
	// Token returns the current bearer token, or "".
	Token() string
}

// Claims is the token payload shared between the client and the
// backend middleware.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenProvider derives the auth state from a signed bearer token. The
// client does not hold the signing secret, so the user id is read from
// the unverified claims; verification happens server-side.
type TokenProvider struct {
	token  string
	userID string
	expiry time.Time
}

// NewTokenProvider parses the token's claims and returns a resolved
// provider. An empty token yields an unauthenticated provider rather
// than an error, matching the "no session yet" state.
func NewTokenProvider(token string) (*TokenProvider, error) {
	if token == "" {
		return &TokenProvider{}, nil
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse auth token: %w", err)
	}

	provider := &TokenProvider{token: token, userID: claims.UserID}
	if claims.ExpiresAt != nil {
		provider.expiry = claims.ExpiresAt.Time
	}
	return provider, nil
}

// Loading always reports false: a TokenProvider is constructed from a
// resolved token.
func (p *TokenProvider) Loading() bool { return false }

// Authenticated reports whether the token is present and unexpired.
func (p *TokenProvider) Authenticated() bool {
	if p.token == "" {
		return false
	}
	return p.expiry.IsZero() || p.expiry.After(time.Now())
}

// UserID returns the uid claim of the token.
func (p *TokenProvider) UserID() string { return p.userID }

// Token returns the raw bearer token.
func (p *TokenProvider) Token() string { return p.token }

// MintToken signs a short-lived HS256 token carrying the user id. Used
// by the dev server and tests; production tokens come from the external
// auth provider.
func MintToken(secret []byte, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
