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
	"regexp"

	"secrets/internal/entity"
	"secrets/internal/middleware"
	"secrets/internal/service"

	"github.com/gorilla/sessions"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.@-]{3,64}$`)

func validateUsername(username string) bool {
	return usernameRe.MatchString(username)
}

// establishSession issues a server-side session for the user and stores the
// raw token in the cookie. Registration and both login strategies all
// converge here.
func establishSession(store *sessions.CookieStore, sessionService service.SessionService, w http.ResponseWriter, r *http.Request, user *entity.User) error {
	rawToken, err := sessionService.Issue(user)
	if err != nil {
		return err
	}

	session, _ := store.Get(r, middleware.SessionName)
	session.Values[middleware.TokenKey] = rawToken
	return sessions.Save(r, w)
}

// dropSession revokes the server-side session referenced by the cookie (if
// any) and expires the cookie itself.
func dropSession(store *sessions.CookieStore, sessionService service.SessionService, w http.ResponseWriter, r *http.Request) error {
	session, _ := store.Get(r, middleware.SessionName)
	if rawToken, ok := session.Values[middleware.TokenKey].(string); ok {
		if err := sessionService.Revoke(rawToken); err != nil {
			return err
		}
	}
	session.Options.MaxAge = -1
	return sessions.Save(r, w)
}
