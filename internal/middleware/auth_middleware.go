/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package middleware

import (
	"context"
	"errors"
	"net/http"

	"secrets/internal/entity"
	"secrets/internal/service"

	"github.com/gorilla/sessions"
)

// SessionName is the cookie session holding the auth token.
const SessionName = "auth-session"

// TokenKey is the cookie session value carrying the raw session token.
const TokenKey = "session-token"

type contextKey byte

const userContextKey contextKey = 1

// UserFromContext returns the authenticated user placed in the request
// context by Auth. The second return is false on unguarded routes.
func UserFromContext(ctx context.Context) (*entity.User, bool) {
	u, ok := ctx.Value(userContextKey).(*entity.User)
	return u, ok
}

// WithUser returns a context carrying the given user, as Auth would set it.
func WithUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// Auth guards a route: it resolves the request's cookie token back to a user
// record and injects it into the context, or redirects to /login. Every
// rejection produces a response, a guarded handler never runs unauthenticated.
// A store failure during resolution is a 5xx, not an authentication verdict.
func Auth(store *sessions.CookieStore, sessionService service.SessionService, next func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := store.Get(r, SessionName)
		if err != nil {
			// A cookie that fails to decode is treated as no cookie at all.
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		rawToken, ok := session.Values[TokenKey].(string)
		if !ok || rawToken == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		user, err := sessionService.Resolve(rawToken)
		if err != nil {
			if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrSessionExpired) {
				// Expired, revoked or orphaned sessions all fail closed. Drop
				// the stale cookie so the client does not keep presenting it.
				session.Options.MaxAge = -1
				_ = sessions.Save(r, w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			// A store failure is not an authentication verdict. Keep the
			// cookie, the session may still resolve once the store recovers.
			http.Error(w, "Could not verify the session", http.StatusInternalServerError)
			return
		}

		next(w, r.WithContext(WithUser(r.Context(), user)))
	}
}
