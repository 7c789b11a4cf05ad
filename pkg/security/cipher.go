package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
)

// PayloadCipher encrypts and decrypts node/edge payload bytes with
// AES-256-GCM before they reach the content-addressable store, for
// deployments that want data encrypted at rest independent of
// capability-based access control. Encryption is opt-in: pkg/cas
// encrypts on Put and decrypts on Get only when cas.Options.Cipher is
// set, and stores payload bytes as given otherwise.
type PayloadCipher struct {
	key []byte // 32 bytes for AES-256
}

// NewPayloadCipher returns a PayloadCipher using key directly. key
// must be exactly 32 bytes.
func NewPayloadCipher(key []byte) (*PayloadCipher, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes for AES-256, got %d", len(key))
	}
	return &PayloadCipher{key: key}, nil
}

// NewPayloadCipherFromPassphrase derives a 32-byte key from passphrase
// via SHA-256. Convenient for config-file-supplied secrets; a raw
// 32-byte key via NewPayloadCipher is preferred when one is available.
func NewPayloadCipherFromPassphrase(passphrase string) (*PayloadCipher, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}
	hash := sha256.Sum256([]byte(passphrase))
	return NewPayloadCipher(hash[:])
}

// DeriveKeyFromStoreID derives a deterministic 32-byte key from a data
// directory's store identifier, for deployments that want a
// reproducible key without persisting one separately. Callers that
// need the key to survive a store-ID rename should use
// NewPayloadCipher with a key they manage themselves instead.
func DeriveKeyFromStoreID(storeID string) []byte {
	hash := sha256.Sum256([]byte(storeID))
	return hash[:]
}

// Encrypt returns plaintext encrypted under AES-256-GCM with a random
// nonce prepended to the ciphertext.
func (c *PayloadCipher) Encrypt(plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("cannot encrypt empty data")
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt reverses Encrypt, expecting the nonce prepended to ciphertext.
func (c *PayloadCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 {
		return nil, fmt.Errorf("cannot decrypt empty data")
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
