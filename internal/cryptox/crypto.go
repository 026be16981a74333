// Package cryptox implements the symmetric codec used for room payloads.
// Scenes are sealed with AES-256-GCM under a per-room key that only clients
// hold; the server stores the (iv, ciphertext) pair as opaque bytes.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/skomarov/boardkeeper/internal/common"
)

const (
	// KeySize is the room key length in bytes (AES-256).
	KeySize = 32
	// NonceSize is the GCM nonce length in bytes. The nonce is generated
	// fresh for every Seal and is safe to store next to the ciphertext.
	NonceSize = 12
)

// NewKey returns a fresh random room key.
func NewKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("key generation: %w", err)
	}
	return key, nil
}

// DeriveKey stretches a passphrase into a room key with argon2id. The salt
// is not secret; roomctl uses the room id so the same passphrase yields the
// same key for a given room.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// Seal encrypts plaintext with AES-256-GCM under key. It returns the fresh
// random nonce and the ciphertext separately, matching how the room store
// persists them.
func Seal(key, plaintext []byte) (iv, ciphertext []byte, err error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, nil, err
	}

	iv = make([]byte, NonceSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, fmt.Errorf("nonce generation: %w", err)
	}

	return iv, aead.Seal(nil, iv, plaintext, nil), nil
}

// Open decrypts ciphertext sealed by Seal. A wrong key, a truncated nonce
// or any corruption of the ciphertext yields an error wrapping
// common.ErrDecryption; Open never returns partially decrypted data.
func Open(iv, ciphertext, key []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	if len(iv) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: bad nonce length %d", common.ErrDecryption, len(iv))
	}

	plaintext, err := aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}

	return plaintext, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key length %d, want %d", len(key), KeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
