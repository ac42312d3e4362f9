package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the master key length in bytes.
const KeySize = chacha20poly1305.KeySize

// ErrDecrypt is returned for any ciphertext that cannot be opened: wrong key,
// tampering, truncation or malformed encoding. Callers get no further detail.
var ErrDecrypt = errors.New("decryption failed")

// Key is a master key for the symmetric cipher.
type Key []byte

// GenerateKey returns a new random master key.
func GenerateKey() (Key, error) {
	key := make(Key, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// ParseKey decodes the textual key form produced by String.
func ParseKey(s string) (Key, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse key: %w", err)
	}
	if len(raw) != KeySize {
		return nil, fmt.Errorf("parse key: need %d bytes, got %d", KeySize, len(raw))
	}
	return Key(raw), nil
}

func (k Key) String() string {
	return base64.RawURLEncoding.EncodeToString(k)
}

// Cipher encrypts and decrypts secret fields under the active master key.
// Rekey swaps the key in place so long-lived holders pick up a rotation
// without restarting.
type Cipher struct {
	mu  sync.RWMutex
	key Key
}

func New(key Key) *Cipher {
	return &Cipher{key: key}
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return EncryptWithKey(c.key, plaintext)
}

func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return DecryptWithKey(c.key, ciphertext)
}

// Rekey replaces the active key. The caller must have already re-encrypted
// the store under the new key.
func (c *Cipher) Rekey(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = key
}

// EncryptWithKey seals plaintext under an explicit key. The nonce is random
// per call, so encrypting the same value twice yields different ciphertext.
func EncryptWithKey(key Key, plaintext string) (string, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// DecryptWithKey opens ciphertext produced by EncryptWithKey.
func DecryptWithKey(key Key, ciphertext string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecrypt
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	if len(raw) < aead.NonceSize() {
		return "", ErrDecrypt
	}

	plaintext, err := aead.Open(nil, raw[:aead.NonceSize()], raw[aead.NonceSize():], nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}
