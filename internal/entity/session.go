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

	"gorm.io/gorm"
)

// Session ties a client-held opaque token to an authenticated user.
// Only the sha256 hash of the token is persisted, the raw value lives in the
// client's cookie. Logout soft-deletes the record through RevokedAt.
type Session struct {
	TokenHash string         `gorm:"primaryKey"`
	CreatedAt time.Time      `gorm:"not null; index"`
	ExpiresAt time.Time      `gorm:"not null; index"`
	RevokedAt gorm.DeletedAt `gorm:"index"`
	UserUUID  UUID           `gorm:"not null; index"`
}

// Expired reports whether the session passed its TTL at time now.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
