// Package obfuscation implements the reversible keyed transform used for the
// persisted fact map. It is a data-integrity envelope, not encryption: the
// XOR keystream is the PIN repeated, so anyone holding the blob and a few
// guesses can recover it.
package obfuscation

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/memochat/internal/domain"
)

var ErrEmptyKey = errors.New("obfuscation key is empty")

// Encode serializes value as JSON, XORs byte i with key[i mod len(key)] and
// returns standard base64. Keys are used as UTF-8 bytes.
func Encode(value any, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	return base64.StdEncoding.EncodeToString(xor(payload, []byte(key))), nil
}

// Decode reverses Encode into out. Any malformed input yields an error
// wrapping domain.ErrDecode.
func Decode(blob string, key string, out any) error {
	if key == "" {
		return ErrEmptyKey
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return fmt.Errorf("%w: base64: %v", domain.ErrDecode, err)
	}

	plain := xor(raw, []byte(key))
	if !json.Valid(plain) {
		return fmt.Errorf("%w: payload is not valid json", domain.ErrDecode)
	}
	if err := json.Unmarshal(plain, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}

	return nil
}

func xor(data []byte, key []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}
