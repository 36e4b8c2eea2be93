package util

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// HashJSON returns a stable hash of value's JSON encoding. Map keys are
// sorted by encoding/json, so semantically equal inputs hash equal.
func HashJSON(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
