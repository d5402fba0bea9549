// Package middleware holds the HTTP middleware shared by all API routes.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/freightdesk/internal/http/respond"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleContractor Role = "contractor"
	RoleDriver     Role = "driver"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleContractor, RoleDriver:
		return true
	}

	return false
}

// Claims is the bearer token payload. Subject holds the user id, which for
// contractors is their contractor id.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

type claimsKey struct{}

var errMissingToken = errors.New("missing bearer token")

func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// Authenticator validates HS256 bearer tokens. When disabled every request
// runs as an anonymous admin.
type Authenticator struct {
	secret   []byte
	disabled bool
	log      *zap.Logger
}

func NewAuthenticator(secret string, disabled bool, log *zap.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), disabled: disabled, log: log}
}

// Issue signs a token for subject. Used by the ctl binary and tests.
func (a *Authenticator) Issue(subject string, role Role, ttl time.Duration) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("invalid role %q", role)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

func (a *Authenticator) parse(header string) (*Claims, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, errMissingToken
	}

	claims := &Claims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	if !claims.Role.Valid() || claims.Subject == "" {
		return nil, fmt.Errorf("token without valid subject and role")
	}

	return claims, nil
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.disabled {
			anonymous := &Claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "anonymous"}}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), anonymous)))

			return
		}

		claims, err := a.parse(r.Header.Get("Authorization"))
		if err != nil {
			a.log.Debug("authentication failed", zap.String("path", r.URL.Path), zap.Error(err))
			respond.Fail(w, http.StatusUnauthorized, respond.CodeUnauthorized, "authentication required")

			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireRole rejects requests whose token role is not listed.
func RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				respond.Fail(w, http.StatusUnauthorized, respond.CodeUnauthorized, "authentication required")
				return
			}

			if !slices.Contains(roles, claims.Role) {
				respond.Fail(w, http.StatusForbidden, respond.CodeForbidden, "insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
