// Package encryption seals preference values at rest with AES-256-GCM.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// KeyLength is the AES-256 key size in bytes. Longer keys are reduced with SHA-256.
	KeyLength = 32
	// EnvKeyName is the environment variable holding the key.
	EnvKeyName = "SHAREDPREFS_ENCRYPTION_KEY"
)

var (
	ErrInvalidKeyLength  = errors.New("encryption key must be at least 32 bytes for AES-256")
	ErrKeyNotFound       = errors.New("encryption key not found in environment variable " + EnvKeyName)
	ErrEncryptionFailed  = errors.New("encryption operation failed")
	ErrDecryptionFailed  = errors.New("decryption operation failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext: too short or malformed")
)

// Sealer encrypts and decrypts with a fixed key. It is safe for concurrent use.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer creates a Sealer keyed from EnvKeyName.
func NewSealer() (*Sealer, error) {
	key, err := keyFromEnv()
	if err != nil {
		return nil, err
	}
	return NewSealerWithKey(key)
}

// NewSealerWithKey creates a Sealer with an explicit key of at least KeyLength bytes.
func NewSealerWithKey(key []byte) (*Sealer, error) {
	if len(key) < KeyLength {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrInvalidKeyLength, len(key), KeyLength)
	}
	if len(key) > KeyLength {
		sum := sha256.Sum256(key)
		key = sum[:]
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create cipher: %v", ErrEncryptionFailed, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create GCM: %v", ErrEncryptionFailed, err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal returns nonce || ciphertext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: failed to generate nonce: %v", ErrEncryptionFailed, err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	if len(sealed) < nonceSize+s.aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}
	plaintext, err := s.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// SealString seals plaintext and returns it base64 encoded.
func (s *Sealer) SealString(plaintext string) (string, error) {
	sealed, err := s.Seal([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenString reverses SealString.
func (s *Sealer) OpenString(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64: %v", ErrDecryptionFailed, err)
	}
	plaintext, err := s.Open(sealed)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// ValidateKey checks the environment key without creating a Sealer,
// for fast-fail validation at startup.
func ValidateKey() error {
	_, err := keyFromEnv()
	return err
}

func keyFromEnv() ([]byte, error) {
	keyStr := os.Getenv(EnvKeyName)
	if keyStr == "" {
		return nil, ErrKeyNotFound
	}
	if len(keyStr) < KeyLength {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrInvalidKeyLength, len(keyStr), KeyLength)
	}
	return []byte(keyStr), nil
}
