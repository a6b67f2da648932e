// Package vault keeps named TOTP entries in a single password-encrypted file.
package vault

import (
	"fmt"
	"slices"

	"github.com/fahmaliyi/otpvault/otp"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Vault maps unique entry names to TOTP entries. The zero value is not
// usable; call New.
type Vault struct {
	id      uuid.UUID
	entries map[string]otp.Entry
}

func New() *Vault {
	return &Vault{id: uuid.New(), entries: map[string]otp.Entry{}}
}

// ID identifies the vault across saves. It is stored encrypted.
func (v *Vault) ID() uuid.UUID { return v.id }

func (v *Vault) Len() int { return len(v.entries) }

func (v *Vault) Insert(name string, e otp.Entry) error {
	if name == "" {
		return ErrInvalidEntryName
	}
	if !e.Valid() {
		return fmt.Errorf("vault: entry %q is not initialized", name)
	}
	if _, ok := v.entries[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateEntryName, name)
	}
	v.entries[name] = e
	return nil
}

// Replace swaps the entry stored under an existing name.
func (v *Vault) Replace(name string, e otp.Entry) error {
	if _, ok := v.entries[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntryName, name)
	}
	if !e.Valid() {
		return fmt.Errorf("vault: entry %q is not initialized", name)
	}
	v.entries[name] = e
	return nil
}

func (v *Vault) Remove(name string) error {
	if _, ok := v.entries[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntryName, name)
	}
	delete(v.entries, name)
	return nil
}

func (v *Vault) Get(name string) (otp.Entry, bool) {
	e, ok := v.entries[name]
	return e, ok
}

// Names returns the entry names in lexical order.
func (v *Vault) Names() []string {
	names := lo.Keys(v.entries)
	slices.Sort(names)
	return names
}

// Zero wipes a byte slice such as a password read from the terminal.
func Zero(b []byte) {
	zero(b)
}
