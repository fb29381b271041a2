/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package handler

import (
	"errors"
	"net/http"

	"secrets/internal/service"
	"secrets/internal/view"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

// AuthHandler helps in managing user registration and authentication
type AuthHandler struct {
	authService    service.AuthService
	sessionService service.SessionService
	cookieStore    *sessions.CookieStore
	renderer       *view.PageRenderer
	logger         zerolog.Logger
}

func NewAuthHandler(authService service.AuthService, sessionService service.SessionService, cookieStore *sessions.CookieStore, renderer *view.PageRenderer, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionService: sessionService,
		cookieStore:    cookieStore,
		renderer:       renderer,
		logger:         logger,
	}
}

// Registers a user
// If the method is GET, a registration form is shown
// If it's POST, it retrieves the input fields and uses the auth service to
// create the account, establishing a session exactly like a login would
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if err := h.renderer.RenderTemplate(w, "register.html", view.PageData{}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error occurred while parsing the form", http.StatusBadRequest)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	if !validateUsername(username) {
		h.rerender(w, "register.html", http.StatusBadRequest, "Usernames are 3 to 64 letters, digits or _.@-")
		return
	}

	user, err := h.authService.Register(username, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateUsername):
			// Surface the specific failure instead of bouncing the client
			// through a silent redirect.
			h.rerender(w, "register.html", http.StatusConflict, "That username is already taken")
		case errors.Is(err, service.ErrPasswordRequired), errors.Is(err, service.ErrPasswordTooShort), errors.Is(err, service.ErrUsernameRequired):
			h.rerender(w, "register.html", http.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("registration failed")
			h.rerender(w, "register.html", http.StatusInternalServerError, "Something went wrong, try again later")
		}
		return
	}

	if err := establishSession(h.cookieStore, h.sessionService, w, r, user); err != nil {
		h.logger.Error().Err(err).Msg("establishing session after registration")
		http.Error(w, "Could not establish a session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

// Login handles the authentication phase
// If this function got called by a GET request, it shows the login form
// Otherwise, for POST, it retrieves the form's input fields and tries to
// verify the credentials, establishing a session on success.
// Every failure path answers the client, a failed login is a 401 with the
// form re-rendered, never a logged-and-dropped request.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if err := h.renderer.RenderTemplate(w, "login.html", view.PageData{}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.authService.LoginLocal(username, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrInvalidCredentials):
			// The client sees one message for both, which of the two it was
			// stays in the server log.
			h.logger.Info().Str("username", username).Err(err).Msg("login rejected")
			h.rerender(w, "login.html", http.StatusUnauthorized, "Wrong username or password")
		default:
			h.logger.Error().Err(err).Msg("login failed")
			h.rerender(w, "login.html", http.StatusInternalServerError, "Something went wrong, try again later")
		}
		return
	}

	if err := establishSession(h.cookieStore, h.sessionService, w, r, user); err != nil {
		h.logger.Error().Err(err).Msg("establishing session after login")
		http.Error(w, "Could not establish a session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

// Logout revokes the current user's session, effectively logging them out
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := dropSession(h.cookieStore, h.sessionService, w, r); err != nil {
		h.logger.Error().Err(err).Msg("logout failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) rerender(w http.ResponseWriter, page string, status int, message string) {
	if err := h.renderer.RenderStatus(w, status, page, view.PageData{Error: message}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
