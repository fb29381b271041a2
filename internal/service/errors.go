/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package service

import "errors"

// Authentication errors
var (
	ErrUserNotFound        = errors.New("user not found")                 // 401
	ErrInvalidCredentials  = errors.New("invalid username or password")   // 401
	ErrDuplicateUsername   = errors.New("username already taken")         // 409
	ErrProviderAuthFailure = errors.New("identity provider authentication failed")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found") // 401
	ErrSessionExpired  = errors.New("session expired")   // 401
)

// Validation errors (client input)
var (
	ErrUsernameRequired = errors.New("username is required")  // 400
	ErrPasswordRequired = errors.New("password is required")  // 400
	ErrPasswordTooShort = errors.New("password is too short") // 400
)
