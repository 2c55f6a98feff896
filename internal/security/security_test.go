package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.CreateForUser(42)
	require.NoError(t, err)

	id, err := svc.ParseUserID(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService("one", time.Hour).CreateForUser(1)
	require.NoError(t, err)

	_, err = NewTokenService("two", time.Hour).ParseUserID(token)
	assert.Error(t, err)
}

func TestTokenRejectsExpired(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	token, err := svc.CreateWithTTL(1, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ParseUserID(token)
	assert.Error(t, err)
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(4)

	hashed, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hashed)
	assert.NoError(t, h.Verify("password123", hashed))
	assert.Error(t, h.Verify("password124", hashed))
}

func TestEncryptor(t *testing.T) {
	enc, err := NewEncryptor([]byte("a secret of any length"))
	require.NoError(t, err)

	a, err := enc.Encrypt("hello")
	require.NoError(t, err)
	b, err := enc.Encrypt("hello")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "nonce must differ per message")

	plain, err := enc.Decrypt(a)
	require.NoError(t, err)
	assert.Equal(t, "hello", plain)

	_, err = enc.Decrypt("not-base64!")
	assert.Error(t, err)

	_, err = NewEncryptor(nil)
	assert.Error(t, err)
}
