package cli

import (
	"fmt"
	"strconv"

	"github.com/fahmaliyi/otpvault/otp"
	"github.com/fahmaliyi/otpvault/vault"
)

// Add inserts one entry, creating the database first if the user agrees.
// The entry comes from uri when given, otherwise from prompts; base32
// selects how a typed key is read.
func (a *App) Add(base32 bool, uri string) error {
	var (
		v   *vault.Vault
		pw  []byte
		err error
	)
	if a.exists() {
		v, pw, err = a.open()
		if err != nil {
			return err
		}
	} else {
		fmt.Fprintf(a.out, "Database file %s does not exist.\n", a.cfg.Database)
		ok, err := confirm(a.prompt, "Create new one?", true)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		pw, err = readNewPassword(a.prompt)
		if err != nil {
			return err
		}
		v = vault.New()
	}
	defer vault.Zero(pw)

	var (
		name  string
		entry otp.Entry
	)
	if uri != "" {
		name, entry, err = otp.ParseURI(uri)
	} else {
		name, entry, err = a.readEntry(v, base32)
	}
	if err != nil {
		return err
	}

	if err := v.Insert(name, entry); err != nil {
		return err
	}
	if err := a.save(v, pw); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added entry: %s\n", name)
	return nil
}

var hashChoices = map[string]otp.HashKind{
	"1": otp.SHA1,
	"2": otp.SHA256,
	"3": otp.SHA512,
}

func (a *App) readEntry(v *vault.Vault, base32 bool) (string, otp.Entry, error) {
	name, err := a.prompt.Line("Name", "")
	if err != nil {
		return "", otp.Entry{}, err
	}
	if name == "" {
		return "", otp.Entry{}, vault.ErrInvalidEntryName
	}
	if _, ok := v.Get(name); ok {
		return "", otp.Entry{}, fmt.Errorf("%w: %q", vault.ErrDuplicateEntryName, name)
	}

	key, err := a.prompt.Password("Secret key")
	if err != nil {
		return "", otp.Entry{}, err
	}
	defer func() { vault.Zero(key) }()
	if base32 {
		raw, err := otp.DecodeKeyBytes(key)
		vault.Zero(key)
		if err != nil {
			return "", otp.Entry{}, err
		}
		key = raw
	}

	step, err := a.readUint("Time step", otp.DefaultStep)
	if err != nil {
		return "", otp.Entry{}, err
	}
	t0, err := a.readInt("T0", 0)
	if err != nil {
		return "", otp.Entry{}, err
	}
	digits, err := a.readInt("Digits", 6)
	if err != nil {
		return "", otp.Entry{}, err
	}

	choice, err := a.prompt.Line("Hash (1) SHA-1 (2) SHA-256 (3) SHA-512", "1")
	if err != nil {
		return "", otp.Entry{}, err
	}
	hash, ok := hashChoices[choice]
	if !ok {
		if hash, err = otp.ParseHashKind(choice); err != nil {
			return "", otp.Entry{}, err
		}
	}

	secret, err := otp.NewSecret(key, int(digits), hash)
	if err != nil {
		return "", otp.Entry{}, err
	}
	entry, err := otp.NewEntry(secret, step, t0)
	return name, entry, err
}

func (a *App) readUint(prompt string, def uint64) (uint64, error) {
	s, err := a.prompt.Line(prompt, strconv.FormatUint(def, 10))
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", prompt, err)
	}
	return n, nil
}

func (a *App) readInt(prompt string, def int64) (int64, error) {
	s, err := a.prompt.Line(prompt, strconv.FormatInt(def, 10))
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", prompt, err)
	}
	return n, nil
}
