package store

import (
	"crypto/rand"
	"encoding/hex"
)

const (
	taskIDPrefix    = "tk-"
	projectIDPrefix = "pr-"
	tagIDPrefix     = "tg-"
	filterIDPrefix  = "fl-"
)

// generateID generates a short random entity ID with the given prefix.
// 8 hex characters balances brevity with collision resistance.
func generateID(prefix string) (string, error) {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return prefix + hex.EncodeToString(bytes), nil
}
