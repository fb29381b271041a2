/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package repository

import (
	"secrets/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// This repository manipulates the user records of the system.
// The store's uniqueness constraints (username, external id) are the
// authoritative duplicate signal, callers receive gorm.ErrDuplicatedKey.
type UserRepository interface {
	Create(user *entity.User) error // Inserts a user, gorm.ErrDuplicatedKey on a taken username

	GetByUUID(uuid entity.UUID) (*entity.User, error)    // Retrieves the user with the given uuid
	GetByUsername(username string) (*entity.User, error) // Retrieves the user with the given username, hash included, hence, used for login

	// FindOrCreateByExternalID retrieves the user holding the given federated
	// identity, creating the record in the same statement when absent. Two
	// concurrent callbacks for the same identity yield exactly one record.
	FindOrCreateByExternalID(externalID string) (*entity.User, error)

	SetSecret(uuid entity.UUID, secret string) error // Overwrites the user's secret (resubmission replaces)
	ListWithSecrets() ([]*entity.User, error)        // Retrieves every user with a non-empty secret
}

// Implementation of the repository using a SQLite DB
type SQLiteUserRepository struct {
	db *gorm.DB
}

func NewSQLiteUserRepository(db *gorm.DB) UserRepository {
	return &SQLiteUserRepository{db}
}

func (repo *SQLiteUserRepository) Create(user *entity.User) error {
	return repo.db.Create(user).Error
}

func (repo *SQLiteUserRepository) GetByUUID(uuid entity.UUID) (*entity.User, error) {
	var user entity.User
	if err := repo.db.Where("uuid = ?", uuid).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (repo *SQLiteUserRepository) GetByUsername(username string) (*entity.User, error) {
	var user entity.User
	if err := repo.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (repo *SQLiteUserRepository) FindOrCreateByExternalID(externalID string) (*entity.User, error) {
	candidate := &entity.User{
		UUID:       entity.NewUUID(),
		ExternalID: &externalID,
	}

	// Upsert by unique key: the insert silently loses against an existing
	// record, the read right after returns the winner either way.
	err := repo.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoNothing: true,
		}).Create(candidate).Error; err != nil {
			return err
		}
		return tx.Where("external_id = ?", externalID).First(candidate).Error
	})
	if err != nil {
		return nil, err
	}
	return candidate, nil
}

func (repo *SQLiteUserRepository) SetSecret(uuid entity.UUID, secret string) error {
	result := repo.db.Model(&entity.User{}).Where("uuid = ?", uuid).Update("secret", secret)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (repo *SQLiteUserRepository) ListWithSecrets() ([]*entity.User, error) {
	var users []*entity.User
	err := repo.db.Where("secret IS NOT NULL AND secret <> ''").Order("created_at").Find(&users).Error
	return users, err
}
