package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"basketball-tournament-api/apperrors"
	"basketball-tournament-api/models"
)

const issuer = "fiba-api"

// Principal is the verified identity attached to a request.
// The zero value is unauthenticated and denied by every policy predicate.
type Principal struct {
	UserID string
	Role   models.Role
}

type claims struct {
	UserID string      `json:"uid"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies stateless identity tokens. The secret is
// loaded once at startup; Now is injectable so expiry is testable.
type TokenIssuer struct {
	Secret   []byte
	Lifetime time.Duration
	Now      func() time.Time
}

func NewTokenIssuer(secret string, lifetime time.Duration) *TokenIssuer {
	return &TokenIssuer{
		Secret:   []byte(secret),
		Lifetime: lifetime,
		Now:      time.Now,
	}
}

// Issue produces a signed HS256 token carrying the subject id and role.
func (t *TokenIssuer) Issue(userID string, role models.Role) (string, time.Time, error) {
	now := t.Now()
	expiresAt := now.Add(t.Lifetime)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	})
	signed, err := tok.SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks signature, structure and expiry against the injected clock.
// Any failure means "unauthenticated" to callers; the specific sentinel is
// kept for logging and tests.
func (t *TokenIssuer) Verify(tokenStr string) (Principal, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.Now),
	)
	tok, err := parser.ParseWithClaims(tokenStr, &claims{}, func(token *jwt.Token) (any, error) {
		return t.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Principal{}, apperrors.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Principal{}, apperrors.ErrBadSignature
		default:
			return Principal{}, apperrors.ErrTokenMalformed
		}
	}
	cl, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return Principal{}, apperrors.ErrTokenMalformed
	}
	if cl.UserID == "" || !cl.Role.Valid() {
		return Principal{}, apperrors.ErrTokenMalformed
	}
	return Principal{UserID: cl.UserID, Role: cl.Role}, nil
}

// Refresh verifies a still-valid token and issues a new one with the same
// claims and a fresh expiry. There is no rotation or revocation list; logout
// is not server-enforced.
func (t *TokenIssuer) Refresh(tokenStr string) (string, time.Time, error) {
	p, err := t.Verify(tokenStr)
	if err != nil {
		return "", time.Time{}, err
	}
	return t.Issue(p.UserID, p.Role)
}
