/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package service

import (
	"errors"
	"fmt"

	"secrets/internal/entity"
	"secrets/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

// Service used for the registration and login phases.
// The strategy set is closed: local (username + password) and federated
// (external identity id), both converge on the same user record type and the
// caller establishes the session afterwards.
type AuthService interface {
	Register(username, password string) (*entity.User, error)    // Creates a new local account, ErrDuplicateUsername if the name is taken
	LoginLocal(username, password string) (*entity.User, error)  // Verifies a (username, password) pair, never mutates state
	LoginFederated(externalID string) (*entity.User, error)      // Resolves a provider identity via find-or-create
}

type localAuthService struct {
	userRepository repository.UserRepository
	logger         zerolog.Logger
}

func NewAuthService(userRepo repository.UserRepository, logger zerolog.Logger) AuthService {
	return &localAuthService{
		userRepository: userRepo,
		logger:         logger,
	}
}

func (a *localAuthService) Register(username, password string) (*entity.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	hashString := string(hash)
	u := &entity.User{
		UUID:         entity.NewUUID(),
		Username:     &username,
		PasswordHash: &hashString,
	}

	if err := a.userRepository.Create(u); err != nil {
		// The store's uniqueness constraint is the authoritative duplicate
		// signal, there is no prior existence check to race against.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	a.logger.Info().Str("user", string(u.UUID)).Msg("user registered")
	return u, nil
}

func (a *localAuthService) LoginLocal(username, password string) (*entity.User, error) {
	u, err := a.userRepository.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	// Federated-only accounts carry no local credential and cannot be
	// logged into with a password, whatever its value.
	if u.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	a.logger.Info().Str("user", string(u.UUID)).Msg("local login verified")
	return u, nil
}

func (a *localAuthService) LoginFederated(externalID string) (*entity.User, error) {
	if externalID == "" {
		return nil, ErrProviderAuthFailure
	}

	u, err := a.userRepository.FindOrCreateByExternalID(externalID)
	if err != nil {
		return nil, fmt.Errorf("resolving federated identity: %w", err)
	}

	a.logger.Info().Str("user", string(u.UUID)).Msg("federated login resolved")
	return u, nil
}
