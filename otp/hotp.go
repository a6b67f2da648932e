package otp

import (
	"encoding/binary"
	"fmt"
)

var pow10 = [MaxDigits + 1]uint64{1, 10, 100, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10}

// Secret is the HOTP part of an entry: key, code length and hash.
// It is immutable; accessors hand out copies.
type Secret struct {
	key    []byte
	digits int
	hash   HashKind
}

func NewSecret(key []byte, digits int, hash HashKind) (Secret, error) {
	if digits < MinDigits || digits > MaxDigits {
		return Secret{}, fmt.Errorf("%w: %d", ErrInvalidDigitCount, digits)
	}
	if !hash.Valid() {
		return Secret{}, fmt.Errorf("%w: %s", ErrUnsupportedHashKind, hash)
	}
	return Secret{key: append([]byte(nil), key...), digits: digits, hash: hash}, nil
}

func (s Secret) Key() []byte    { return append([]byte(nil), s.key...) }
func (s Secret) KeyLen() int    { return len(s.key) }
func (s Secret) Digits() int    { return s.digits }
func (s Secret) Hash() HashKind { return s.hash }

// HOTP returns the RFC 4226 code for counter as an integer in
// [0, 10^Digits). Zero padding is left to the caller, see Format.
func (s Secret) HOTP(counter uint64) (uint32, error) {
	if s.digits < MinDigits || s.digits > MaxDigits {
		return 0, ErrInvalidDigitCount
	}
	mac, err := Mac(s.hash, s.key, counter)
	if err != nil {
		return 0, err
	}
	return uint32(uint64(truncate(mac)) % pow10[s.digits]), nil
}

// truncate is the dynamic truncation of RFC 4226 section 5.3.
func truncate(mac []byte) uint32 {
	offset := int(mac[len(mac)-1] & 0x0f)
	return binary.BigEndian.Uint32(mac[offset:offset+4]) & 0x7fffffff
}

// Format zero-pads code to the given width.
func Format(code uint32, digits int) string {
	return fmt.Sprintf("%0*d", digits, code)
}
