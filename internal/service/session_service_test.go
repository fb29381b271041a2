/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package service

import (
	"testing"
	"time"

	"secrets/internal/entity"
	"secrets/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionFixture(t *testing.T, ttl time.Duration) (SessionService, *repository.InMemoryUserRepository, *entity.User) {
	t.Helper()

	userRepo := repository.NewInMemoryUserRepository()
	sessionRepo := repository.NewInMemorySessionRepository()
	auth := NewAuthService(userRepo, zerolog.Nop())

	user, err := auth.Register("alice", "hunter2")
	require.NoError(t, err)

	return NewSessionService(sessionRepo, userRepo, ttl, zerolog.Nop()), userRepo, user
}

func TestIssueAndResolve(t *testing.T) {
	sessions, _, user := newSessionFixture(t, time.Hour)

	rawToken, err := sessions.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, rawToken)

	// The same token keeps resolving to the same user across requests.
	for i := 0; i < 3; i++ {
		resolved, err := sessions.Resolve(rawToken)
		require.NoError(t, err)
		assert.Equal(t, user.UUID, resolved.UUID)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	sessions, _, _ := newSessionFixture(t, time.Hour)

	_, err := sessions.Resolve("not-a-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = sessions.Resolve("")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRevokeEndsTheSession(t *testing.T) {
	sessions, _, user := newSessionFixture(t, time.Hour)

	rawToken, err := sessions.Issue(user)
	require.NoError(t, err)

	require.NoError(t, sessions.Revoke(rawToken))

	_, err = sessions.Resolve(rawToken)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestExpiredSessionFailsClosed(t *testing.T) {
	sessions, _, user := newSessionFixture(t, -time.Minute)

	rawToken, err := sessions.Issue(user)
	require.NoError(t, err)

	_, err = sessions.Resolve(rawToken)
	assert.ErrorIs(t, err, ErrSessionExpired)

	// Once seen expired, the session is revoked for good.
	_, err = sessions.Resolve(rawToken)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResolveFailsWhenUserVanished(t *testing.T) {
	sessions, userRepo, user := newSessionFixture(t, time.Hour)

	rawToken, err := sessions.Issue(user)
	require.NoError(t, err)

	userRepo.Delete(user.UUID)

	_, err = sessions.Resolve(rawToken)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPurgeExpired(t *testing.T) {
	userRepo := repository.NewInMemoryUserRepository()
	sessionRepo := repository.NewInMemorySessionRepository()
	auth := NewAuthService(userRepo, zerolog.Nop())
	user, err := auth.Register("alice", "hunter2")
	require.NoError(t, err)

	expired := NewSessionService(sessionRepo, userRepo, -time.Minute, zerolog.Nop())
	live := NewSessionService(sessionRepo, userRepo, time.Hour, zerolog.Nop())

	_, err = expired.Issue(user)
	require.NoError(t, err)
	liveToken, err := live.Issue(user)
	require.NoError(t, err)

	n, err := live.PurgeExpired()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = live.Resolve(liveToken)
	assert.NoError(t, err)
}
