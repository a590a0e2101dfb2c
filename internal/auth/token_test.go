package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundtrip(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)

	token, err := codec.Sign(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), userID)
}

func TestTokenDefaultExpiry(t *testing.T) {
	codec := NewTokenCodec("test-secret", 0)
	assert.Equal(t, DefaultTokenExpiry, codec.expiry)
}

func TestVerifyFailures(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Hour)

	t.Run("garbage token", func(t *testing.T) {
		_, err := codec.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := codec.Verify("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong signing secret", func(t *testing.T) {
		other := NewTokenCodec("other-secret", time.Hour)

		token, err := other.Sign(42)
		require.NoError(t, err)

		_, err = codec.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := &TokenCodec{secret: []byte("test-secret"), expiry: -time.Minute}

		token, err := expired.Sign(42)
		require.NoError(t, err)

		_, err = codec.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
