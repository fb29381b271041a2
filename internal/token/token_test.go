/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProducesUniqueTokens(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		raw, err := Generate()
		require.NoError(t, err)
		assert.NotEmpty(t, raw)
		assert.False(t, seen[raw], "token generated twice")
		seen[raw] = true
	}
}

func TestHashIsStable(t *testing.T) {
	assert.Equal(t, Hash("fixed"), Hash("fixed"))
	assert.NotEqual(t, Hash("fixed"), Hash("other"))
}

func TestHashDoesNotLeakTheToken(t *testing.T) {
	raw, err := Generate()
	require.NoError(t, err)

	hashed := Hash(raw)
	assert.NotContains(t, hashed, raw)
	assert.Len(t, hashed, 64) // hex-encoded sha256
}
