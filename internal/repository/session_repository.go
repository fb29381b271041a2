/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package repository

import (
	"time"

	"secrets/internal/entity"

	"gorm.io/gorm"
)

// This repository manipulates server-side session records.
// Revocation is a soft delete, revoked sessions never come back from reads.
type SessionRepository interface {
	Create(session *entity.Session) error

	GetByTokenHash(tokenHash string) (*entity.Session, error) // Retrieves a live (non-revoked) session

	Revoke(tokenHash string) error // Marks the session revoked, no error if already gone

	DeleteExpired(now time.Time) (int64, error) // Hard-deletes every session past its TTL, returns how many
}

// Implementation of the repository using a SQLite DB
type SQLiteSessionRepository struct {
	db *gorm.DB
}

func NewSQLiteSessionRepository(db *gorm.DB) SessionRepository {
	return &SQLiteSessionRepository{db}
}

func (repo *SQLiteSessionRepository) Create(session *entity.Session) error {
	return repo.db.Create(session).Error
}

func (repo *SQLiteSessionRepository) GetByTokenHash(tokenHash string) (*entity.Session, error) {
	var session entity.Session
	if err := repo.db.Where("token_hash = ?", tokenHash).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (repo *SQLiteSessionRepository) Revoke(tokenHash string) error {
	return repo.db.Where("token_hash = ?", tokenHash).Delete(&entity.Session{}).Error
}

func (repo *SQLiteSessionRepository) DeleteExpired(now time.Time) (int64, error) {
	result := repo.db.Unscoped().Where("expires_at < ?", now).Delete(&entity.Session{})
	return result.RowsAffected, result.Error
}
