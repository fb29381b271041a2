/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"secrets/internal/entity"
	"secrets/internal/repository"
	"secrets/internal/service"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeProvider stands in for the identity provider: a token endpoint that
// accepts any code and a userinfo endpoint that always answers with the
// given subject.
func fakeProvider(t *testing.T, subject string) *httptest.Server {
	t.Helper()

	providerMux := http.NewServeMux()
	providerMux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fake-access-token","token_type":"Bearer","expires_in":3600}`)
	})
	providerMux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"sub":%q}`, subject)
	})

	server := httptest.NewServer(providerMux)
	t.Cleanup(server.Close)
	return server
}

// spyUserRepository counts federated lookups so tests can tell whether a
// callback ever reached the identity resolution step.
type spyUserRepository struct {
	*repository.InMemoryUserRepository
	federatedLookups int
}

func (s *spyUserRepository) FindOrCreateByExternalID(externalID string) (*entity.User, error) {
	s.federatedLookups++
	return s.InMemoryUserRepository.FindOrCreateByExternalID(externalID)
}

type oauthFixture struct {
	handler        *OAuthHandler
	cookieStore    *sessions.CookieStore
	sessionService service.SessionService
	userRepo       *spyUserRepository
}

func newOAuthFixture(t *testing.T, provider *httptest.Server) *oauthFixture {
	t.Helper()

	userRepo := &spyUserRepository{InMemoryUserRepository: repository.NewInMemoryUserRepository()}
	sessionRepo := repository.NewInMemorySessionRepository()
	logger := zerolog.Nop()

	authService := service.NewAuthService(userRepo, logger)
	sessionService := service.NewSessionService(sessionRepo, userRepo, time.Hour, logger)
	cookieStore := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))

	oauthConfig := &oauth2.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost/auth/google/secrets",
		Scopes:       []string{"openid"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  provider.URL + "/auth",
			TokenURL: provider.URL + "/token",
		},
	}

	return &oauthFixture{
		handler:        NewOAuthHandler(oauthConfig, provider.URL+"/userinfo", authService, sessionService, cookieStore, logger),
		cookieStore:    cookieStore,
		sessionService: sessionService,
		userRepo:       userRepo,
	}
}

// begin runs the Begin handler and hands back the state it generated plus
// the cookie carrying it.
func (f *oauthFixture) begin(t *testing.T) (string, []*http.Cookie) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	rr := httptest.NewRecorder()
	f.handler.Begin(rr, req)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	redirect, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	state := redirect.Query().Get("state")
	require.NotEmpty(t, state)

	return state, rr.Result().Cookies()
}

func (f *oauthFixture) callback(t *testing.T, state string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/auth/google/secrets?state="+url.QueryEscape(state)+"&code=fake-code", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	f.handler.Callback(rr, req)
	return rr
}

func TestFederatedLoginHappyPath(t *testing.T) {
	provider := fakeProvider(t, "google-subject-42")
	f := newOAuthFixture(t, provider)

	state, cookies := f.begin(t)
	rr := f.callback(t, state, cookies)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/secrets", rr.Header().Get("Location"))
	assert.Equal(t, 1, f.userRepo.federatedLookups)

	// The record carries only the external identity.
	user, err := f.userRepo.FindOrCreateByExternalID("google-subject-42")
	require.NoError(t, err)
	assert.Nil(t, user.Username)
	assert.Nil(t, user.PasswordHash)
	assert.True(t, user.Authenticable())
}

func TestFederatedLoginIsIdempotentAcrossCallbacks(t *testing.T) {
	provider := fakeProvider(t, "google-subject-42")
	f := newOAuthFixture(t, provider)

	state1, cookies1 := f.begin(t)
	first := f.callback(t, state1, cookies1)
	assert.Equal(t, http.StatusSeeOther, first.Code)

	state2, cookies2 := f.begin(t)
	second := f.callback(t, state2, cookies2)
	assert.Equal(t, http.StatusSeeOther, second.Code)

	before, err := f.userRepo.FindOrCreateByExternalID("google-subject-42")
	require.NoError(t, err)
	again, err := f.userRepo.FindOrCreateByExternalID("google-subject-42")
	require.NoError(t, err)
	assert.Equal(t, before.UUID, again.UUID, "two callbacks created two records")
}

func TestFederatedLoginProviderError(t *testing.T) {
	provider := fakeProvider(t, "unused")
	f := newOAuthFixture(t, provider)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/secrets?error=access_denied", nil)
	rr := httptest.NewRecorder()
	f.handler.Callback(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	// A denied consent never reaches identity resolution, so no record can
	// have been created.
	assert.Equal(t, 0, f.userRepo.federatedLookups)
}

func TestFederatedLoginStateMismatch(t *testing.T) {
	provider := fakeProvider(t, "google-subject-42")
	f := newOAuthFixture(t, provider)

	_, cookies := f.begin(t)
	rr := f.callback(t, "forged-state", cookies)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.Equal(t, 0, f.userRepo.federatedLookups)
}

func TestFederatedLoginStateIsConsumedOnFailure(t *testing.T) {
	provider := fakeProvider(t, "google-subject-42")
	f := newOAuthFixture(t, provider)

	state, cookies := f.begin(t)

	forged := f.callback(t, "forged-state", cookies)
	require.Equal(t, http.StatusSeeOther, forged.Code)
	require.Equal(t, "/login", forged.Header().Get("Location"))

	// The failed callback wrote the cookie back without the state, so even
	// the genuine value cannot be replayed afterwards.
	refreshed := forged.Result().Cookies()
	require.NotEmpty(t, refreshed, "failed callback did not rewrite the cookie")
	replay := f.callback(t, state, refreshed)
	assert.Equal(t, http.StatusSeeOther, replay.Code)
	assert.Equal(t, "/login", replay.Header().Get("Location"))
	assert.Equal(t, 0, f.userRepo.federatedLookups)
}
