package sharedprefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/sharedprefs/encryption"
)

func TestEncryptionAdapter(t *testing.T) {
	key := []byte("this-is-a-32-byte-key-for-test!!")

	adapter, err := NewEncryptionAdapterWithKey(key)
	require.NoError(t, err)
	require.NotNil(t, adapter)

	plaintext := "sensitive data"
	encrypted, err := adapter.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, encrypted)

	decrypted, err := adapter.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptionAdapterWithEnv(t *testing.T) {
	t.Setenv(encryption.EnvKeyName, "this-is-a-32-byte-key-for-test!!")

	adapter, err := NewEncryptionAdapter()
	require.NoError(t, err)

	encrypted, err := adapter.Encrypt("sensitive data")
	require.NoError(t, err)

	decrypted, err := adapter.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "sensitive data", decrypted)
}

func TestEncryptionAdapterRejectsShortKey(t *testing.T) {
	_, err := NewEncryptionAdapterWithKey([]byte("short"))
	assert.ErrorIs(t, err, encryption.ErrInvalidKeyLength)

	t.Setenv(encryption.EnvKeyName, "")
	_, err = NewEncryptionAdapter()
	assert.ErrorIs(t, err, encryption.ErrKeyNotFound)
}
