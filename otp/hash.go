package otp

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"hash"
)

func (k HashKind) newFunc() (func() hash.Hash, error) {
	switch k {
	case SHA1:
		return sha1.New, nil
	case SHA256:
		return sha256.New, nil
	case SHA512:
		return sha512.New, nil
	}
	return nil, ErrUnsupportedHashKind
}

// Size reports the MAC length in bytes, 0 for an unknown kind.
func (k HashKind) Size() int {
	switch k {
	case SHA1:
		return sha1.Size
	case SHA256:
		return sha256.Size
	case SHA512:
		return sha512.Size
	}
	return 0
}

// Mac computes HMAC(key, bigEndian64(counter)) with the selected hash.
func Mac(kind HashKind, key []byte, counter uint64) ([]byte, error) {
	fn, err := kind.newFunc()
	if err != nil {
		return nil, err
	}
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	h := hmac.New(fn, key)
	h.Write(msg[:])
	return h.Sum(nil), nil
}
