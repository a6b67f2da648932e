package vault

import "errors"

const (
	KeyLen     = 32
	SaltLen    = 16
	MinSaltLen = 16
	NonceLen   = 12
	// SchemaVersion is the version of the encrypted entry document.
	SchemaVersion = 1
)

var (
	ErrFileNotFound          = errors.New("vault: database file not found")
	ErrMalformedContainer    = errors.New("vault: malformed container")
	ErrInvalidBase64Field    = errors.New("vault: invalid base64 field")
	ErrAuthenticationFailure = errors.New("vault: authentication failed")
	ErrCorrupt               = errors.New("vault: corrupt database")
	ErrDuplicateEntryName    = errors.New("vault: entry already exists")
	ErrUnknownEntryName      = errors.New("vault: no such entry")
	ErrInvalidEntryName      = errors.New("vault: invalid entry name")
)

// KDFParams are the Argon2id costs. They are not stored in the file, so a
// database can only be opened with the parameters it was sealed with.
type KDFParams struct {
	Time, Memory uint32
	Threads      uint8
}

// DefaultKDFParams: t=3, m=64 MiB, p=4.
func DefaultKDFParams() KDFParams { return KDFParams{Time: 3, Memory: 64 * 1024, Threads: 4} }

// container is the on-disk document. It is read by parseContainer, which
// matches member names exactly and ignores unknown ones.
type container struct {
	Nonce         string `json:"nonce"`
	Salt          string `json:"salt"`
	EncryptedData string `json:"encrypted_data"`
}

// entryDoc and vaultDoc are the decoding targets for the entry document;
// encodeVault writes the same shape directly.
type entryDoc struct {
	Key    []byte `json:"key"`
	Digits int    `json:"digits"`
	Hash   string `json:"hash"`
	Step   uint64 `json:"step"`
	T0     int64  `json:"t0"`
}

type vaultDoc struct {
	Version int                 `json:"version"`
	ID      string              `json:"id"`
	Entries map[string]entryDoc `json:"entries"`
}
