/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package entity

import (
	"time"

	"github.com/google/uuid"
)

type UUID string

// NewUUID returns a fresh random identifier for a user record.
func NewUUID() UUID {
	return UUID(uuid.New().String())
}

// User is the single identity record of the system.
// A user is authenticable through a local credential (Username + PasswordHash),
// through a federated identity (ExternalID), or both.
// Records created by a federated login carry no username and no password hash.
type User struct {
	UUID         UUID    `gorm:"primaryKey"`
	Username     *string `gorm:"uniqueIndex"` // nil for federated-only accounts
	PasswordHash *string // bcrypt hash, nil for federated-only accounts
	ExternalID   *string `gorm:"uniqueIndex"` // subject id issued by the identity provider
	Secret       *string // free-text secret shown in the shared feed

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time

	Sessions []Session `gorm:"foreignKey:UserUUID;references:UUID"`
}

// Authenticable reports whether the record holds at least one credential.
func (u *User) Authenticable() bool {
	return u.PasswordHash != nil || u.ExternalID != nil
}

// HasSecret reports whether the user submitted a non-empty secret.
func (u *User) HasSecret() bool {
	return u.Secret != nil && *u.Secret != ""
}
