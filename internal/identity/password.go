package identity

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/arklim/dispatch-console-auth/internal/infra/config"
)

// Hasher produces and verifies Argon2id password hashes. Hashes are encoded
// as "salt:hash" with both components base64-encoded.
type Hasher struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

// NewHasher constructs a hasher from the configured Argon2id parameters,
// falling back to sane values for anything unset.
func NewHasher(cfg config.Argon2Settings) *Hasher {
	h := &Hasher{
		memory:      cfg.Memory,
		iterations:  cfg.Iterations,
		parallelism: cfg.Parallelism,
		saltLength:  cfg.SaltLength,
		keyLength:   cfg.KeyLength,
	}
	if h.memory == 0 {
		h.memory = 64 * 1024
	}
	if h.iterations == 0 {
		h.iterations = 3
	}
	if h.parallelism == 0 {
		h.parallelism = 4
	}
	if h.saltLength == 0 {
		h.saltLength = 16
	}
	if h.keyLength == 0 {
		h.keyLength = 32
	}
	return h
}

// Hash generates an Argon2id hash for the provided password.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	sum := argon2.IDKey([]byte(password), salt, h.iterations, h.memory, h.parallelism, h.keyLength)
	encodedSalt := base64.StdEncoding.EncodeToString(salt)
	encodedHash := base64.StdEncoding.EncodeToString(sum)

	return fmt.Sprintf("%s:%s", encodedSalt, encodedHash), nil
}

// Verify compares the provided password against a stored Argon2id hash.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	if password == "" || encoded == "" {
		return false, nil
	}

	parts := strings.Split(encoded, ":")
	if len(parts) != 2 {
		return false, fmt.Errorf("invalid password hash format")
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}

	storedHash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	computed := argon2.IDKey([]byte(password), salt, h.iterations, h.memory, h.parallelism, uint32(len(storedHash)))

	return subtle.ConstantTimeCompare(computed, storedHash) == 1, nil
}
