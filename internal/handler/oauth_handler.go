/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package handler

import (
	"encoding/json"
	"net/http"

	"secrets/internal/middleware"
	"secrets/internal/service"
	"secrets/internal/token"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// DefaultUserInfoURL is Google's OpenID Connect userinfo endpoint.
const DefaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

const stateKey = "oauth-state"

// OAuthHandler runs the federated login handshake: it redirects the client
// to the identity provider and resolves the provider's callback into a local
// user record. Both outcomes of the handshake answer the client, a provider
// failure lands back on /login and never leaves a partial record behind.
type OAuthHandler struct {
	oauthConfig    *oauth2.Config
	userInfoURL    string
	authService    service.AuthService
	sessionService service.SessionService
	cookieStore    *sessions.CookieStore
	logger         zerolog.Logger
}

func NewOAuthHandler(oauthConfig *oauth2.Config, userInfoURL string, authService service.AuthService, sessionService service.SessionService, cookieStore *sessions.CookieStore, logger zerolog.Logger) *OAuthHandler {
	if userInfoURL == "" {
		userInfoURL = DefaultUserInfoURL
	}
	return &OAuthHandler{
		oauthConfig:    oauthConfig,
		userInfoURL:    userInfoURL,
		authService:    authService,
		sessionService: sessionService,
		cookieStore:    cookieStore,
		logger:         logger,
	}
}

// Begin starts the redirect towards the provider. A random state value is
// kept in the cookie session and checked again on the way back.
func (h *OAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	state, err := token.Generate()
	if err != nil {
		h.logger.Error().Err(err).Msg("generating oauth state")
		http.Error(w, "Could not start the login", http.StatusInternalServerError)
		return
	}

	session, _ := h.cookieStore.Get(r, middleware.SessionName)
	session.Values[stateKey] = state
	if err := sessions.Save(r, w); err != nil {
		http.Error(w, "Saving cookie", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.oauthConfig.AuthCodeURL(state), http.StatusSeeOther)
}

// Callback completes the handshake. The provider redirects here with either
// an authorization code or an error (the user denied consent, for example).
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// The state is one-time: consume it before anything else so a failed
	// callback cannot be replayed with the same value.
	session, _ := h.cookieStore.Get(r, middleware.SessionName)
	wantState, _ := session.Values[stateKey].(string)
	delete(session.Values, stateKey)

	if providerErr := query.Get("error"); providerErr != "" {
		h.logger.Info().Str("provider_error", providerErr).Msg("federated login denied")
		h.failLogin(w, r)
		return
	}

	if wantState == "" || query.Get("state") != wantState {
		h.logger.Info().Msg("federated login state mismatch")
		h.failLogin(w, r)
		return
	}

	tok, err := h.oauthConfig.Exchange(r.Context(), query.Get("code"))
	if err != nil {
		h.logger.Info().Err(err).Msg("federated code exchange failed")
		h.failLogin(w, r)
		return
	}

	externalID, err := h.fetchSubject(r, tok)
	if err != nil {
		h.logger.Info().Err(err).Msg("fetching federated profile failed")
		h.failLogin(w, r)
		return
	}

	user, err := h.authService.LoginFederated(externalID)
	if err != nil {
		h.logger.Error().Err(err).Msg("resolving federated identity")
		h.failLogin(w, r)
		return
	}

	if err := establishSession(h.cookieStore, h.sessionService, w, r, user); err != nil {
		h.logger.Error().Err(err).Msg("establishing session after federated login")
		http.Error(w, "Could not establish a session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

// failLogin writes the cookie session back (persisting the consumed state)
// and sends the client to the login page.
func (h *OAuthHandler) failLogin(w http.ResponseWriter, r *http.Request) {
	if err := sessions.Save(r, w); err != nil {
		h.logger.Warn().Err(err).Msg("saving cookie session")
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// fetchSubject asks the provider's userinfo endpoint who the token belongs
// to and returns the opaque subject id.
func (h *OAuthHandler) fetchSubject(r *http.Request, tok *oauth2.Token) (string, error) {
	client := h.oauthConfig.Client(r.Context(), tok)
	resp, err := client.Get(h.userInfoURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", service.ErrProviderAuthFailure
	}

	var profile struct {
		Sub string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", err
	}
	if profile.Sub == "" {
		return "", service.ErrProviderAuthFailure
	}
	return profile.Sub, nil
}
