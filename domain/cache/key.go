package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Key derives the cache key of a tool call. Arguments are decoded and
// re-encoded so that field order and whitespace do not change the key.
func Key(toolName string, args json.RawMessage) (string, error) {
	if toolName == "" {
		return "", ErrInvalidKey
	}

	canonical := []byte("null")
	if len(bytes.TrimSpace(args)) > 0 {
		var v any
		dec := json.NewDecoder(bytes.NewReader(args))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		out, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		canonical = out
	}

	sum := sha256.Sum256(canonical)
	return toolName + ":" + hex.EncodeToString(sum[:]), nil
}
