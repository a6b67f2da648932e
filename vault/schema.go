package vault

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/fahmaliyi/otpvault/otp"
	"github.com/google/uuid"
)

const (
	// docFrame covers {"version":N,"id":"<uuid>","entries":{}}.
	docFrame = 96
	// entryFrame covers one entry apart from its name and key, with the
	// widest digits, hash, step and t0.
	entryFrame = 128
)

// encodedLen bounds the size of the document encodeVault writes for v.
// Names are counted at six bytes per input byte, the widest escape.
func encodedLen(v *Vault) int {
	n := docFrame
	for name, e := range v.entries {
		n += entryFrame + 6*len(name) + base64.StdEncoding.EncodedLen(e.Secret().KeyLen())
	}
	return n
}

// encodeVault renders v as the versioned entry document. The whole document
// is written into one buffer allocated at its final capacity, so no stale
// copy is left behind by growth or by pooled encoder state. The caller owns
// the returned buffer and must wipe it.
func encodeVault(v *Vault) []byte {
	buf := make([]byte, 0, encodedLen(v))
	buf = append(buf, `{"version":`...)
	buf = strconv.AppendInt(buf, SchemaVersion, 10)
	buf = append(buf, `,"id":"`...)
	buf = append(buf, v.id.String()...)
	buf = append(buf, `","entries":{`...)

	for i, name := range v.Names() {
		e := v.entries[name]
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendString(buf, name)
		buf = append(buf, `:{"key":"`...)
		key := e.Secret().Key()
		buf = base64.StdEncoding.AppendEncode(buf, key)
		zero(key)
		buf = append(buf, `","digits":`...)
		buf = strconv.AppendInt(buf, int64(e.Digits()), 10)
		buf = append(buf, `,"hash":"`...)
		buf = append(buf, e.Secret().Hash().String()...)
		buf = append(buf, `","step":`...)
		buf = strconv.AppendUint(buf, e.Step(), 10)
		buf = append(buf, `,"t0":`...)
		buf = strconv.AppendInt(buf, e.T0(), 10)
		buf = append(buf, '}')
	}
	return append(buf, "}}"...)
}

const hexDigits = "0123456789abcdef"

// appendString writes s as a JSON string. Invalid UTF-8 becomes U+FFFD,
// matching encoding/json.
func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch {
			case c == '"' || c == '\\':
				buf = append(buf, '\\', c)
			case c < 0x20:
				buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
			default:
				buf = append(buf, c)
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf = append(buf, `\ufffd`...)
		} else {
			buf = append(buf, s[i:i+size]...)
		}
		i += size
	}
	return append(buf, '"')
}

// decodeVault parses an entry document. Nothing is returned unless every
// entry is valid.
func decodeVault(pt []byte) (*Vault, error) {
	var doc vaultDoc
	defer wipeDoc(&doc)

	if err := json.Unmarshal(pt, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: unsupported schema version %d", ErrCorrupt, doc.Version)
	}
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: vault id: %v", ErrCorrupt, err)
	}

	v := &Vault{id: id, entries: make(map[string]otp.Entry, len(doc.Entries))}
	for name, ed := range doc.Entries {
		if name == "" {
			return nil, fmt.Errorf("%w: empty entry name", ErrCorrupt)
		}
		e, err := decodeEntry(ed)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", name, err)
		}
		v.entries[name] = e
	}
	return v, nil
}

func decodeEntry(ed entryDoc) (otp.Entry, error) {
	hash, err := otp.ParseHashKind(ed.Hash)
	if err != nil {
		return otp.Entry{}, err
	}
	secret, err := otp.NewSecret(ed.Key, ed.Digits, hash)
	if err != nil {
		return otp.Entry{}, err
	}
	return otp.NewEntry(secret, ed.Step, ed.T0)
}

func wipeDoc(doc *vaultDoc) {
	for _, ed := range doc.Entries {
		zero(ed.Key)
	}
}
