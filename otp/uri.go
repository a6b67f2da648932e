package otp

import (
	"fmt"
	"net/url"
	"strconv"

	pquerna "github.com/pquerna/otp"
)

// ParseURI reads an otpauth://totp/ key URI. The returned name is
// "issuer:account" when the URI carries an issuer, else the account.
func ParseURI(uri string) (string, Entry, error) {
	key, err := pquerna.NewKeyFromURL(uri)
	if err != nil {
		return "", Entry{}, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	if key.Type() != "totp" {
		return "", Entry{}, fmt.Errorf("%w: type %q", ErrInvalidURI, key.Type())
	}
	if key.Secret() == "" {
		return "", Entry{}, fmt.Errorf("%w: missing secret", ErrInvalidURI)
	}

	var hash HashKind
	switch key.Algorithm() {
	case pquerna.AlgorithmSHA1:
		hash = SHA1
	case pquerna.AlgorithmSHA256:
		hash = SHA256
	case pquerna.AlgorithmSHA512:
		hash = SHA512
	default:
		return "", Entry{}, fmt.Errorf("%w: %s", ErrUnsupportedHashKind, key.Algorithm())
	}

	// Digits() only knows 6 and 8; honour any value in range.
	digits := key.Digits().Length()
	u, err := url.Parse(key.URL())
	if err != nil {
		return "", Entry{}, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	if raw := u.Query().Get("digits"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return "", Entry{}, fmt.Errorf("%w: digits %q", ErrInvalidURI, raw)
		}
		digits = n
	}

	entry, err := NewEntryFromBase32(key.Secret(), key.Period(), 0, digits, hash)
	if err != nil {
		return "", Entry{}, err
	}

	name := key.AccountName()
	if issuer := key.Issuer(); issuer != "" && issuer != name {
		name = issuer + ":" + name
	}
	if name == "" {
		return "", Entry{}, fmt.Errorf("%w: missing label", ErrInvalidURI)
	}
	return name, entry, nil
}
