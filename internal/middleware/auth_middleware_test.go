/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"secrets/internal/entity"
	"secrets/internal/repository"
	"secrets/internal/service"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiddlewareFixture(t *testing.T) (*sessions.CookieStore, service.SessionService, service.AuthService) {
	t.Helper()

	userRepo := repository.NewInMemoryUserRepository()
	sessionRepo := repository.NewInMemorySessionRepository()
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))

	return store,
		service.NewSessionService(sessionRepo, userRepo, time.Hour, zerolog.Nop()),
		service.NewAuthService(userRepo, zerolog.Nop())
}

// authCookie builds the cookie a logged-in client would hold.
func authCookie(t *testing.T, store *sessions.CookieStore, rawToken string) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	session, err := store.Get(req, SessionName)
	require.NoError(t, err)
	session.Values[TokenKey] = rawToken
	require.NoError(t, session.Save(req, rr))

	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestAuthRedirectsWithoutCookie(t *testing.T) {
	store, sessionService, _ := newMiddlewareFixture(t)

	guarded := Auth(store, sessionService, func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler ran for an unauthenticated request")
	})

	req := httptest.NewRequest(http.MethodGet, "/secrets", nil)
	rr := httptest.NewRecorder()
	guarded(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestAuthRedirectsOnStaleToken(t *testing.T) {
	store, sessionService, _ := newMiddlewareFixture(t)

	guarded := Auth(store, sessionService, func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler ran for a stale session")
	})

	req := httptest.NewRequest(http.MethodGet, "/secrets", nil)
	req.AddCookie(authCookie(t, store, "revoked-or-never-issued"))
	rr := httptest.NewRecorder()
	guarded(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

// unavailableSessionService simulates a store that cannot answer.
type unavailableSessionService struct{}

func (unavailableSessionService) Issue(*entity.User) (string, error) {
	return "", errors.New("database is locked")
}

func (unavailableSessionService) Resolve(string) (*entity.User, error) {
	return nil, errors.New("looking up session: database is locked")
}

func (unavailableSessionService) Revoke(string) error { return nil }

func (unavailableSessionService) PurgeExpired() (int64, error) { return 0, nil }

func TestAuthAnswersStoreFailureWithServerError(t *testing.T) {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))

	guarded := Auth(store, unavailableSessionService{}, func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler ran while the store was unavailable")
	})

	req := httptest.NewRequest(http.MethodGet, "/secrets", nil)
	req.AddCookie(authCookie(t, store, "some-issued-token"))
	rr := httptest.NewRecorder()
	guarded(rr, req)

	// An unreachable store is not an authentication verdict: the client
	// gets a 5xx and keeps its cookie for when the store recovers.
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Empty(t, rr.Header().Get("Location"))
	assert.Empty(t, rr.Result().Cookies(), "cookie was rewritten on a store failure")
}

func TestAuthInjectsResolvedUser(t *testing.T) {
	store, sessionService, authService := newMiddlewareFixture(t)

	registered, err := authService.Register("alice", "hunter2")
	require.NoError(t, err)
	rawToken, err := sessionService.Issue(registered)
	require.NoError(t, err)

	ran := false
	guarded := Auth(store, sessionService, func(w http.ResponseWriter, r *http.Request) {
		ran = true
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, registered.UUID, user.UUID)
	})

	req := httptest.NewRequest(http.MethodGet, "/secrets", nil)
	req.AddCookie(authCookie(t, store, rawToken))
	rr := httptest.NewRecorder()
	guarded(rr, req)

	assert.True(t, ran, "guarded handler never ran")
	assert.Equal(t, http.StatusOK, rr.Code)
}
