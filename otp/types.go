// Package otp implements HOTP (RFC 4226) and TOTP (RFC 6238) code generation.
package otp

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	MinDigits   = 1
	MaxDigits   = 10
	DefaultStep = 30
	// MaxStep is the longest window, in seconds, a time.Duration can hold.
	MaxStep = uint64(math.MaxInt64 / int64(time.Second))
)

var (
	ErrUnsupportedHashKind = errors.New("otp: unsupported hash kind")
	ErrInvalidDigitCount   = errors.New("otp: digit count out of range")
	ErrInvalidKeyEncoding  = errors.New("otp: invalid base32 key")
	ErrInvalidTimeStep     = errors.New("otp: time step out of range")
	ErrBeforeEpoch         = errors.New("otp: instant precedes epoch offset")
	ErrInvalidURI          = errors.New("otp: invalid otpauth uri")
)

// HashKind selects the hash function under HMAC.
type HashKind uint8

const (
	SHA1 HashKind = iota + 1
	SHA256
	SHA512
)

func (k HashKind) String() string {
	switch k {
	case SHA1:
		return "SHA1"
	case SHA256:
		return "SHA256"
	case SHA512:
		return "SHA512"
	default:
		return fmt.Sprintf("HashKind(%d)", uint8(k))
	}
}

func (k HashKind) Valid() bool { return k >= SHA1 && k <= SHA512 }

// ParseHashKind accepts the tags produced by String, case-insensitively,
// with or without a dash ("SHA-256").
func ParseHashKind(s string) (HashKind, error) {
	switch strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "") {
	case "SHA1":
		return SHA1, nil
	case "SHA256":
		return SHA256, nil
	case "SHA512":
		return SHA512, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedHashKind, s)
}
