// Package sharedprefs provides an adapter for the encryption package.
package sharedprefs

import (
	"github.com/CreativeUnicorns/sharedprefs/encryption"
)

// EncryptionAdapter exposes an encryption.Sealer as an Encryptor for storage wrappers.
type EncryptionAdapter struct {
	sealer *encryption.Sealer
}

// NewEncryptionAdapter reads the key from the environment and fails fast if it is
// missing or too short.
func NewEncryptionAdapter() (*EncryptionAdapter, error) {
	sealer, err := encryption.NewSealer()
	if err != nil {
		return nil, err
	}
	return &EncryptionAdapter{sealer: sealer}, nil
}

// NewEncryptionAdapterWithKey creates an adapter with an explicit key.
func NewEncryptionAdapterWithKey(key []byte) (*EncryptionAdapter, error) {
	sealer, err := encryption.NewSealerWithKey(key)
	if err != nil {
		return nil, err
	}
	return &EncryptionAdapter{sealer: sealer}, nil
}

// Encrypt seals plaintext into a base64 string.
func (e *EncryptionAdapter) Encrypt(plaintext string) (string, error) {
	return e.sealer.SealString(plaintext)
}

// Decrypt opens a string produced by Encrypt.
func (e *EncryptionAdapter) Decrypt(ciphertext string) (string, error) {
	return e.sealer.OpenString(ciphertext)
}
