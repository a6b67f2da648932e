package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/fahmaliyi/otpvault/otp"
	"github.com/fahmaliyi/otpvault/vault"
	"github.com/sirupsen/logrus"
)

// App runs one subcommand against the configured database.
type App struct {
	cfg    Config
	codec  *vault.Codec
	prompt Prompter
	out    io.Writer
	log    logrus.FieldLogger

	now   func() time.Time
	copy  func(string) error
	paste func() (string, error)
	sleep func(time.Duration)
	watch func(*vault.Vault) error
}

func NewApp(cfg Config, prompt Prompter, out io.Writer) *App {
	log := logrus.StandardLogger()
	a := &App{
		cfg:    cfg,
		codec:  vault.NewCodec(vault.WithLogger(log)),
		prompt: prompt,
		out:    out,
		log:    log,
		now:    time.Now,
		copy:   clipboard.WriteAll,
		paste:  clipboard.ReadAll,
		sleep:  time.Sleep,
	}
	a.watch = a.runWatch
	return a
}

func (a *App) exists() bool {
	_, err := os.Stat(a.cfg.Database)
	return err == nil
}

// open prompts for the password and loads the database.
func (a *App) open() (*vault.Vault, []byte, error) {
	pw, err := a.prompt.Password("Database password")
	if err != nil {
		return nil, nil, err
	}
	v, err := a.codec.Load(a.cfg.Database, pw)
	if err != nil {
		vault.Zero(pw)
		return nil, nil, fmt.Errorf("failed to load database from %s: %w", a.cfg.Database, err)
	}
	return v, pw, nil
}

func (a *App) save(v *vault.Vault, pw []byte) error {
	if err := a.codec.Save(v, a.cfg.Database, pw); err != nil {
		return fmt.Errorf("failed to save database to %s: %w", a.cfg.Database, err)
	}
	return nil
}

func (a *App) Create() error {
	if a.exists() {
		return fmt.Errorf("database %s already exists", a.cfg.Database)
	}
	pw, err := readNewPassword(a.prompt)
	if err != nil {
		return err
	}
	defer vault.Zero(pw)

	if err := a.save(vault.New(), pw); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created database %s\n", a.cfg.Database)
	return nil
}

func (a *App) Remove(name string) error {
	v, pw, err := a.open()
	if err != nil {
		return err
	}
	defer vault.Zero(pw)

	if err := v.Remove(name); err != nil {
		return err
	}
	if err := a.save(v, pw); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed entry: %s\n", name)
	return nil
}

func (a *App) code(v *vault.Vault, name string) (string, otp.Entry, error) {
	e, ok := v.Get(name)
	if !ok {
		return "", otp.Entry{}, fmt.Errorf("%w: %q", vault.ErrUnknownEntryName, name)
	}
	code, err := e.TOTP(a.now())
	if err != nil {
		return "", otp.Entry{}, err
	}
	return otp.Format(code, e.Digits()), e, nil
}

// Show prints the current code. With copy it goes to the clipboard
// instead, and is cleared after the configured delay if still there.
func (a *App) Show(name string, copy bool) error {
	v, pw, err := a.open()
	if err != nil {
		return err
	}
	vault.Zero(pw)

	code, e, err := a.code(v, name)
	if err != nil {
		return err
	}
	if !copy {
		fmt.Fprintln(a.out, code)
		return nil
	}

	if err := a.copy(code); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	if a.cfg.ClipboardClear <= 0 {
		fmt.Fprintln(a.out, "Code copied to clipboard.")
		return nil
	}
	fmt.Fprintf(a.out, "Code copied to clipboard (valid %s). Clearing in %s...\n",
		e.Remaining(a.now()).Round(time.Second), a.cfg.ClipboardClear)
	a.sleep(a.cfg.ClipboardClear)

	current, err := a.paste()
	if err != nil || current != code {
		return nil
	}
	return a.copy("")
}

func (a *App) List() error {
	v, pw, err := a.open()
	if err != nil {
		return err
	}
	vault.Zero(pw)

	for _, name := range v.Names() {
		fmt.Fprintln(a.out, name)
	}
	return nil
}

// NewPass re-encrypts the database under a new password.
func (a *App) NewPass() error {
	v, pw, err := a.open()
	if err != nil {
		return err
	}
	vault.Zero(pw)

	newPW, err := readNewPassword(a.prompt)
	if err != nil {
		return err
	}
	defer vault.Zero(newPW)

	if err := a.save(v, newPW); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed.")
	return nil
}

func (a *App) Watch() error {
	v, pw, err := a.open()
	if err != nil {
		return err
	}
	vault.Zero(pw)

	if v.Len() == 0 {
		return errors.New("database has no entries")
	}
	return a.watch(v)
}
