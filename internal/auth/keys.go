// Package auth is the thin admin-token layer guarding the sync and
// blacklist admin endpoints. There are no user accounts; a single
// argon2id-hashed admin secret mints short-lived PASETO tokens.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PASETO v4 requires a 256-bit symmetric key; stored hex-encoded.
const (
	keyLength    = 32
	keyHexLength = 64
)

// LoadOrGenerateKey loads the admin token key from <dataPath>/admin.key,
// generating and persisting a fresh one on first run. Returns the decoded
// 32-byte key.
func LoadOrGenerateKey(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, "admin.key")

	if keyBytes, err := os.ReadFile(keyPath); err == nil {
		keyHex := strings.TrimSpace(string(keyBytes))
		if len(keyHex) != keyHexLength {
			return nil, fmt.Errorf("invalid admin key length: expected %d hex chars, got %d", keyHexLength, len(keyHex))
		}
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid admin key format: %w", err)
		}
		return key, nil
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate admin key: %w", err)
	}

	if err := os.MkdirAll(dataPath, 0o750); err != nil {
		return nil, fmt.Errorf("create key directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("persist admin key: %w", err)
	}

	return key, nil
}
