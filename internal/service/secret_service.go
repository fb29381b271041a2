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
	"gorm.io/gorm"
)

// Service for the secrets feed. The owning user always comes from the
// resolved session, never from client input.
type SecretService interface {
	Submit(owner entity.UUID, secret string) error // Overwrites the owner's secret, resubmission replaces
	Feed() ([]*entity.User, error)                 // Every user with a non-empty secret, oldest first
}

type secretService struct {
	userRepository repository.UserRepository
	logger         zerolog.Logger
}

func NewSecretService(userRepo repository.UserRepository, logger zerolog.Logger) SecretService {
	return &secretService{
		userRepository: userRepo,
		logger:         logger,
	}
}

func (s *secretService) Submit(owner entity.UUID, secret string) error {
	if err := s.userRepository.SetSecret(owner, secret); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("storing secret: %w", err)
	}
	s.logger.Info().Str("user", string(owner)).Msg("secret submitted")
	return nil
}

func (s *secretService) Feed() ([]*entity.User, error) {
	users, err := s.userRepository.ListWithSecrets()
	if err != nil {
		return nil, fmt.Errorf("listing secrets: %w", err)
	}
	return users, nil
}
