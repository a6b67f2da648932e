package otp

import (
	"bytes"
	"encoding/base32"
	"fmt"
)

var keyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// DecodeKey decodes a base32 key as shown by most issuers: case and spaces
// are ignored and trailing '=' padding is optional.
func DecodeKey(s string) ([]byte, error) {
	return DecodeKeyBytes([]byte(s))
}

// DecodeKeyBytes is DecodeKey for a key held in a wipeable buffer. b is not
// modified and no copy of it outlives the call.
func DecodeKeyBytes(b []byte) ([]byte, error) {
	norm := make([]byte, 0, len(b))
	defer zero(norm[:cap(norm)])
	for _, field := range bytes.Fields(b) {
		for _, c := range field {
			if 'a' <= c && c <= 'z' {
				c -= 'a' - 'A'
			}
			norm = append(norm, c)
		}
	}
	norm = bytes.TrimRight(norm, "=")

	raw := make([]byte, keyEncoding.DecodedLen(len(norm)))
	n, err := keyEncoding.Decode(raw, norm)
	if err != nil {
		zero(raw)
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}
	return raw[:n], nil
}

// EncodeKey is the inverse of DecodeKey, padded.
func EncodeKey(key []byte) string {
	return base32.StdEncoding.EncodeToString(key)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
