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

	"secrets/internal/view"
)

// PageHandler serves the public landing page
type PageHandler struct {
	renderer *view.PageRenderer
}

func NewPageHandler(renderer *view.PageRenderer) *PageHandler {
	return &PageHandler{renderer: renderer}
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.RenderTemplate(w, "home.html", view.PageData{}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
