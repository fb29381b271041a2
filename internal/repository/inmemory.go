/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package repository

import (
	"sync"
	"time"

	"secrets/internal/entity"

	"gorm.io/gorm"
)

// In-memory implementations of the repositories. They honour the same error
// contract as the SQLite ones (gorm sentinels included) and back the tests
// as well as throwaway runs without a database file.

var (
	_ UserRepository    = (*InMemoryUserRepository)(nil)
	_ SessionRepository = (*InMemorySessionRepository)(nil)
)

type InMemoryUserRepository struct {
	mutex sync.RWMutex
	users []*entity.User // insertion order doubles as creation order
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{}
}

func (repo *InMemoryUserRepository) Create(user *entity.User) error {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()

	for _, existing := range repo.users {
		if user.Username != nil && existing.Username != nil && *existing.Username == *user.Username {
			return gorm.ErrDuplicatedKey
		}
		if user.ExternalID != nil && existing.ExternalID != nil && *existing.ExternalID == *user.ExternalID {
			return gorm.ErrDuplicatedKey
		}
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	repo.users = append(repo.users, &clone)
	return nil
}

func (repo *InMemoryUserRepository) GetByUUID(uuid entity.UUID) (*entity.User, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	for _, u := range repo.users {
		if u.UUID == uuid {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (repo *InMemoryUserRepository) GetByUsername(username string) (*entity.User, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	for _, u := range repo.users {
		if u.Username != nil && *u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (repo *InMemoryUserRepository) FindOrCreateByExternalID(externalID string) (*entity.User, error) {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()

	for _, u := range repo.users {
		if u.ExternalID != nil && *u.ExternalID == externalID {
			clone := *u
			return &clone, nil
		}
	}

	now := time.Now()
	created := &entity.User{
		UUID:       entity.NewUUID(),
		ExternalID: &externalID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	repo.users = append(repo.users, created)
	clone := *created
	return &clone, nil
}

func (repo *InMemoryUserRepository) SetSecret(uuid entity.UUID, secret string) error {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()

	for _, u := range repo.users {
		if u.UUID == uuid {
			s := secret
			u.Secret = &s
			u.UpdatedAt = time.Now()
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (repo *InMemoryUserRepository) ListWithSecrets() ([]*entity.User, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	var out []*entity.User
	for _, u := range repo.users {
		if u.HasSecret() {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

// Delete removes a user record outright. The SQLite repository has no such
// operation (records are never deleted by the application), this exists so
// tests can exercise session resolution against a vanished user.
func (repo *InMemoryUserRepository) Delete(uuid entity.UUID) {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()

	for i, u := range repo.users {
		if u.UUID == uuid {
			repo.users = append(repo.users[:i], repo.users[i+1:]...)
			return
		}
	}
}

type InMemorySessionRepository struct {
	mutex    sync.RWMutex
	sessions map[string]*entity.Session
	revoked  map[string]bool
}

func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{
		sessions: make(map[string]*entity.Session),
		revoked:  make(map[string]bool),
	}
}

func (repo *InMemorySessionRepository) Create(session *entity.Session) error {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()

	clone := *session
	repo.sessions[session.TokenHash] = &clone
	return nil
}

func (repo *InMemorySessionRepository) GetByTokenHash(tokenHash string) (*entity.Session, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	session, ok := repo.sessions[tokenHash]
	if !ok || repo.revoked[tokenHash] {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *session
	return &clone, nil
}

func (repo *InMemorySessionRepository) Revoke(tokenHash string) error {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()

	repo.revoked[tokenHash] = true
	return nil
}

func (repo *InMemorySessionRepository) DeleteExpired(now time.Time) (int64, error) {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()

	var n int64
	for hash, session := range repo.sessions {
		if session.Expired(now) {
			delete(repo.sessions, hash)
			delete(repo.revoked, hash)
			n++
		}
	}
	return n, nil
}
