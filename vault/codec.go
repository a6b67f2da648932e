package vault

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Codec seals vaults into the three-field JSON container and back.
type Codec struct {
	kdf  KDFParams
	rand io.Reader
	now  func() time.Time
	log  logrus.FieldLogger

	mu         sync.Mutex
	lastMillis int64
}

type Option func(*Codec)

// WithKDFParams overrides the Argon2id costs. Files sealed with
// non-default costs can only be opened by a codec using the same costs.
func WithKDFParams(p KDFParams) Option { return func(c *Codec) { c.kdf = p } }

// WithRand sets the source for salts and nonce suffixes.
func WithRand(r io.Reader) Option { return func(c *Codec) { c.rand = r } }

// WithClock sets the clock used for the nonce prefix.
func WithClock(now func() time.Time) Option { return func(c *Codec) { c.now = now } }

func WithLogger(l logrus.FieldLogger) Option { return func(c *Codec) { c.log = l } }

func NewCodec(opts ...Option) *Codec {
	c := &Codec{
		kdf: DefaultKDFParams(),
		now: time.Now,
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// nextMillis returns the clock in unix milliseconds, bumped past the last
// value handed out so that a repeating or backward clock never yields the
// same nonce prefix twice from one codec.
func (c *Codec) nextMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	ms := c.now().UnixMilli()
	if ms <= c.lastMillis {
		ms = c.lastMillis + 1
	}
	c.lastMillis = ms
	return ms
}

// wipePlaintext scrubs serialized entry documents on every exit path of
// Seal and Open. Tests swap it to observe the buffers.
var wipePlaintext = zero

// Seal serializes v and encrypts it under a key derived from password with
// a fresh salt and nonce.
func (c *Codec) Seal(v *Vault, password []byte) ([]byte, error) {
	pt := encodeVault(v)
	defer wipePlaintext(pt)

	salt, err := randBytes(c.rand, SaltLen)
	if err != nil {
		return nil, fmt.Errorf("vault: salt: %w", err)
	}
	nonce, err := makeNonce(c.rand, c.nextMillis())
	if err != nil {
		return nil, fmt.Errorf("vault: nonce: %w", err)
	}

	key := DeriveKey(password, salt, c.kdf)
	defer zero(key)

	ct, err := AEADSeal(key, nonce, pt)
	if err != nil {
		return nil, err
	}

	return json.Marshal(container{
		Nonce:         base64.StdEncoding.EncodeToString(nonce),
		Salt:          base64.StdEncoding.EncodeToString(salt),
		EncryptedData: base64.StdEncoding.EncodeToString(ct),
	})
}

// Open reverses Seal. It returns a vault only if the container parses,
// the tag verifies and every entry decodes.
func (c *Codec) Open(data, password []byte) (*Vault, error) {
	box, err := parseContainer(data)
	if err != nil {
		return nil, err
	}

	nonce, err := decodeField("nonce", box.Nonce)
	if err != nil {
		return nil, err
	}
	salt, err := decodeField("salt", box.Salt)
	if err != nil {
		return nil, err
	}
	ct, err := decodeField("encrypted_data", box.EncryptedData)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceLen {
		return nil, fmt.Errorf("%w: nonce is %d bytes", ErrMalformedContainer, len(nonce))
	}
	if len(salt) < MinSaltLen {
		return nil, fmt.Errorf("%w: salt is %d bytes", ErrMalformedContainer, len(salt))
	}

	key := DeriveKey(password, salt, c.kdf)
	defer zero(key)

	pt, err := AEADOpen(key, nonce, ct)
	if err != nil {
		return nil, err
	}
	defer wipePlaintext(pt)

	return decodeVault(pt)
}

var containerFields = []string{"nonce", "salt", "encrypted_data"}

// parseContainer reads the three fields by their exact names. encoding/json
// would also bind "NONCE" or "Salt" to the struct; here those are just
// unknown members and are ignored like any other.
func parseContainer(data []byte) (container, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return container{}, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}

	var box container
	dst := []*string{&box.Nonce, &box.Salt, &box.EncryptedData}
	for i, name := range containerFields {
		raw, ok := members[name]
		if !ok {
			return container{}, fmt.Errorf("%w: missing %s", ErrMalformedContainer, name)
		}
		if err := json.Unmarshal(raw, dst[i]); err != nil {
			return container{}, fmt.Errorf("%w: %s: %v", ErrMalformedContainer, name, err)
		}
	}
	return box, nil
}

func decodeField(name, value string) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedContainer, name)
	}
	b, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBase64Field, name, err)
	}
	return b, nil
}

// Save replaces the file at path with the sealed vault. The previous
// content survives until the new file is complete.
func (c *Codec) Save(v *Vault, path string, password []byte) error {
	data, err := c.Seal(v, password)
	if err != nil {
		return err
	}
	if err := atomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("vault: write %s: %w", path, err)
	}

	c.log.WithFields(logrus.Fields{
		"path":     path,
		"vault_id": v.ID().String(),
		"entries":  v.Len(),
	}).Debug("vault saved")
	return nil
}

func (c *Codec) Load(path string, password []byte) (*Vault, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("vault: read %s: %w", path, err)
	}

	v, err := c.Open(data, password)
	if err != nil {
		c.log.WithField("path", path).WithError(err).Debug("vault load failed")
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"path":     path,
		"vault_id": v.ID().String(),
		"entries":  v.Len(),
	}).Debug("vault loaded")
	return v, nil
}

// ChangePassword re-encrypts the database at path under newPassword.
func (c *Codec) ChangePassword(path string, oldPassword, newPassword []byte) error {
	v, err := c.Load(path, oldPassword)
	if err != nil {
		return err
	}
	return c.Save(v, path, newPassword)
}

var defaultCodec = NewCodec()

// Load opens the database at path with the default codec.
func Load(path string, password []byte) (*Vault, error) {
	return defaultCodec.Load(path, password)
}

// Save writes v to path with the default codec.
func Save(v *Vault, path string, password []byte) error {
	return defaultCodec.Save(v, path, password)
}

func ChangePassword(path string, oldPassword, newPassword []byte) error {
	return defaultCodec.ChangePassword(path, oldPassword, newPassword)
}
