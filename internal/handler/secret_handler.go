/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package handler

import (
	"net/http"

	"secrets/internal/middleware"
	"secrets/internal/service"
	"secrets/internal/view"

	"github.com/rs/zerolog"
)

// SecretHandler serves the secrets feed and the submission form.
// Both routes sit behind the auth middleware, the user in the request
// context is always present and already verified.
type SecretHandler struct {
	secretService service.SecretService
	renderer      *view.PageRenderer
	logger        zerolog.Logger
}

func NewSecretHandler(secretService service.SecretService, renderer *view.PageRenderer, logger zerolog.Logger) *SecretHandler {
	return &SecretHandler{
		secretService: secretService,
		renderer:      renderer,
		logger:        logger,
	}
}

// Secrets renders the feed of every non-empty secret
func (h *SecretHandler) Secrets(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserFromContext(r.Context()); !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	users, err := h.secretService.Feed()
	if err != nil {
		h.logger.Error().Err(err).Msg("loading secrets feed")
		http.Error(w, "Could not load the secrets", http.StatusInternalServerError)
		return
	}

	secretTexts := make([]string, 0, len(users))
	for _, u := range users {
		if u.HasSecret() {
			secretTexts = append(secretTexts, *u.Secret)
		}
	}

	if err := h.renderer.RenderTemplate(w, "secrets.html", view.PageData{Content: secretTexts}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Submit lets the authenticated user attach a secret to their own record
// If the method is GET, the submission form is shown
// If it's POST, the secret overwrites whatever the user stored before, the
// owner is always the session's user, never an id from the client
func (h *SecretHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodGet {
		if err := h.renderer.RenderTemplate(w, "submit.html", view.PageData{}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	if err := h.secretService.Submit(user.UUID, r.FormValue("secret")); err != nil {
		h.logger.Error().Err(err).Str("user", string(user.UUID)).Msg("submitting secret")
		http.Error(w, "Could not store the secret", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}
