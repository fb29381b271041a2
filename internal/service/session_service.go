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
	"time"

	"secrets/internal/entity"
	"secrets/internal/repository"
	"secrets/internal/token"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Service governing the session lifecycle: a successful login or registration
// issues a token, each subsequent request resolves it back to a user record,
// logout revokes it. The raw token only ever travels inside the cookie.
type SessionService interface {
	Issue(user *entity.User) (string, error)        // Creates a session and returns the raw token for the cookie
	Resolve(rawToken string) (*entity.User, error)  // Resolves a cookie token back to its user, failing closed
	Revoke(rawToken string) error                   // Invalidates the session (logout)
	PurgeExpired() (int64, error)                   // Housekeeping, removes sessions past their TTL
}

type sessionService struct {
	sessionRepository repository.SessionRepository
	userRepository    repository.UserRepository
	ttl               time.Duration
	logger            zerolog.Logger
}

func NewSessionService(sessionRepo repository.SessionRepository, userRepo repository.UserRepository, ttl time.Duration, logger zerolog.Logger) SessionService {
	return &sessionService{
		sessionRepository: sessionRepo,
		userRepository:    userRepo,
		ttl:               ttl,
		logger:            logger,
	}
}

func (s *sessionService) Issue(user *entity.User) (string, error) {
	raw, err := token.Generate()
	if err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}

	now := time.Now()
	session := &entity.Session{
		TokenHash: token.Hash(raw),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		UserUUID:  user.UUID,
	}

	if err := s.sessionRepository.Create(session); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return raw, nil
}

func (s *sessionService) Resolve(rawToken string) (*entity.User, error) {
	if rawToken == "" {
		return nil, ErrSessionNotFound
	}

	// The lookup is keyed by the token's hash, so a hit already proves the
	// client presented the matching token.
	session, err := s.sessionRepository.GetByTokenHash(token.Hash(rawToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("looking up session: %w", err)
	}

	if session.Expired(time.Now()) {
		// Revoke on sight so the record cannot be raced back to life.
		if err := s.sessionRepository.Revoke(session.TokenHash); err != nil {
			s.logger.Warn().Err(err).Msg("revoking expired session")
		}
		return nil, ErrSessionExpired
	}

	user, err := s.userRepository.GetByUUID(session.UserUUID)
	if err != nil {
		// A session whose user record is gone must fail authentication
		// rather than continue with partial data.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("resolving session user: %w", err)
	}

	return user, nil
}

func (s *sessionService) Revoke(rawToken string) error {
	if rawToken == "" {
		return nil
	}
	if err := s.sessionRepository.Revoke(token.Hash(rawToken)); err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

func (s *sessionService) PurgeExpired() (int64, error) {
	n, err := s.sessionRepository.DeleteExpired(time.Now())
	if err != nil {
		return 0, fmt.Errorf("purging expired sessions: %w", err)
	}
	if n > 0 {
		s.logger.Info().Int64("sessions", n).Msg("purged expired sessions")
	}
	return n, nil
}
