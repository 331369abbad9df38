// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// UserKey is the context key for the authenticated user id.
const UserKey contextKey = "user"

// Authenticate verifies an optional "Authorization: Bearer <jwt>" header
// signed with HS256 and secret. The token's subject must be the user's
// uuid; it is stored in the request context for UserFromCtx.
//
// Requests without the header pass through anonymously. A header that is
// present but invalid is rejected with 401 so clients notice expired
// tokens instead of silently seeing the public view.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(header) <= 7 || !strings.EqualFold(header[:7], "Bearer ") {
				writeError(w, http.StatusUnauthorized, "malformed authorization header")
				return
			}

			userID, err := ParseToken(secret, strings.TrimSpace(header[7:]))
			if err != nil {
				slog.Debug("bearer token rejected", "error", err, "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser returns 401 unless Authenticate stored a user id.
// Must be applied after Authenticate in the middleware chain.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromCtx(r.Context()) == uuid.Nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromCtx returns the authenticated user id, or uuid.Nil for
// anonymous requests.
func UserFromCtx(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(UserKey).(uuid.UUID)
	return id
}

// WithUser returns a copy of ctx carrying userID, as Authenticate does.
func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserKey, userID)
}

// ParseToken validates an HS256 token and returns its subject as a uuid.
func ParseToken(secret []byte, token string) (uuid.UUID, error) {
	if len(secret) == 0 {
		return uuid.Nil, errors.New("no signing secret configured")
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("token subject %q is not a user id", claims.Subject)
	}
	return id, nil
}

// IssueToken signs an HS256 token for userID valid for ttl.
func IssueToken(secret []byte, userID uuid.UUID, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("no signing secret configured")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
