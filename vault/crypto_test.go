package vault

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cheapKDF = KDFParams{Time: 1, Memory: 1024, Threads: 1}

func TestDeriveKey(t *testing.T) {
	salt := bytes.Repeat([]byte{1}, SaltLen)
	otherSalt := bytes.Repeat([]byte{2}, SaltLen)

	k1 := DeriveKey([]byte("password"), salt, cheapKDF)
	k2 := DeriveKey([]byte("password"), salt, cheapKDF)
	assert.Len(t, k1, KeyLen)
	assert.Equal(t, k1, k2, "same password and salt must give the same key")

	assert.NotEqual(t, k1, DeriveKey([]byte("password"), otherSalt, cheapKDF))
	assert.NotEqual(t, k1, DeriveKey([]byte("Password"), salt, cheapKDF))
}

func TestAEADRoundTrip(t *testing.T) {
	key, err := randBytes(nil, KeyLen)
	require.NoError(t, err)
	nonce, err := makeNonce(nil, 1700000000000)
	require.NoError(t, err)

	for _, pt := range [][]byte{{}, []byte("x"), bytes.Repeat([]byte("totp"), 1000)} {
		ct, err := AEADSeal(key, nonce, pt)
		require.NoError(t, err)
		assert.Len(t, ct, len(pt)+16)

		got, err := AEADOpen(key, nonce, ct)
		require.NoError(t, err)
		assert.Equal(t, len(pt), len(got))
		assert.True(t, bytes.Equal(pt, got))
	}
}

func TestAEADOpenFailures(t *testing.T) {
	key, _ := randBytes(nil, KeyLen)
	nonce, _ := makeNonce(nil, 1)
	ct, err := AEADSeal(key, nonce, []byte("sensitive seed material"))
	require.NoError(t, err)

	otherKey, _ := randBytes(nil, KeyLen)
	otherNonce, _ := makeNonce(nil, 2)

	t.Run("wrong key", func(t *testing.T) {
		_, err := AEADOpen(otherKey, nonce, ct)
		assert.ErrorIs(t, err, ErrAuthenticationFailure)
	})
	t.Run("wrong nonce", func(t *testing.T) {
		_, err := AEADOpen(key, otherNonce, ct)
		assert.ErrorIs(t, err, ErrAuthenticationFailure)
	})
	t.Run("short nonce", func(t *testing.T) {
		_, err := AEADOpen(key, nonce[:8], ct)
		assert.ErrorIs(t, err, ErrAuthenticationFailure)
	})
	t.Run("truncated", func(t *testing.T) {
		_, err := AEADOpen(key, nonce, ct[:10])
		assert.ErrorIs(t, err, ErrAuthenticationFailure)
	})
	t.Run("empty", func(t *testing.T) {
		_, err := AEADOpen(key, nonce, nil)
		assert.ErrorIs(t, err, ErrAuthenticationFailure)
	})
	t.Run("flipped tag", func(t *testing.T) {
		tampered := append([]byte(nil), ct...)
		tampered[len(tampered)-1] ^= 0x01
		pt, err := AEADOpen(key, nonce, tampered)
		assert.ErrorIs(t, err, ErrAuthenticationFailure)
		assert.Nil(t, pt)
	})
}

func TestAEADSealRejectsBadSizes(t *testing.T) {
	_, err := AEADSeal(make([]byte, 16), make([]byte, NonceLen), nil)
	assert.Error(t, err)
	_, err = AEADSeal(make([]byte, KeyLen), make([]byte, 24), nil)
	assert.Error(t, err)
}

func TestMakeNonceLayout(t *testing.T) {
	nonce, err := makeNonce(bytes.NewReader([]byte{0xde, 0xad, 0xbe, 0xef}), 0x0102030405060708)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 0xde, 0xad, 0xbe, 0xef}, nonce)

	_, err = makeNonce(bytes.NewReader(nil), 1)
	assert.Error(t, err)
}

func TestZero(t *testing.T) {
	b := []byte("plaintext")
	zero(b)
	assert.Equal(t, make([]byte, len(b)), b)
	zero(nil)
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.json")

	require.NoError(t, os.WriteFile(path, []byte("old content that is longer"), 0644))
	require.NoError(t, atomicWriteFile(path, []byte("new"), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	matches, err := filepath.Glob(filepath.Join(dir, ".otpvault-*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temporary file left behind")
}
