package cli

import (
	"os"
	"strings"
	"testing"

	"github.com/fahmaliyi/otpvault/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rfcKey = "12345678901234567890"

func TestCommandsLifecycle(t *testing.T) {
	p := &scriptPrompter{}
	a, out, clip := testApp(t, p)

	p.passwords = []string{"pw", "pw"}
	require.NoError(t, a.Create())
	assert.FileExists(t, a.cfg.Database)
	assert.Error(t, a.Create(), "create refuses to overwrite")

	p.passwords = []string{"pw", rfcKey}
	p.lines = []string{"github", "", "", "8", ""}
	require.NoError(t, a.Add(false, ""))
	assert.Contains(t, out.String(), "Added entry: github")

	p.passwords = []string{"pw"}
	p.lines = nil
	require.NoError(t, a.Add(false, "otpauth://totp/Example:alice?secret=GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ&issuer=Example"))

	out.Reset()
	p.passwords = []string{"pw"}
	require.NoError(t, a.List())
	assert.Equal(t, "Example:alice\ngithub\n", out.String())

	out.Reset()
	p.passwords = []string{"pw"}
	require.NoError(t, a.Show("github", false))
	assert.Equal(t, "94287082\n", out.String())

	p.passwords = []string{"pw"}
	require.NoError(t, a.Show("Example:alice", true))
	assert.Equal(t, []string{"287082", ""}, clip.writes, "copied then cleared")

	p.passwords = []string{"pw"}
	assert.ErrorIs(t, a.Show("gitlab", false), vault.ErrUnknownEntryName)

	p.passwords = []string{"pw"}
	require.NoError(t, a.Remove("github"))
	p.passwords = []string{"pw"}
	assert.ErrorIs(t, a.Remove("github"), vault.ErrUnknownEntryName)

	p.passwords = []string{"pw", "new", "new"}
	require.NoError(t, a.NewPass())

	p.passwords = []string{"pw"}
	assert.ErrorIs(t, a.List(), vault.ErrAuthenticationFailure)

	out.Reset()
	p.passwords = []string{"new"}
	require.NoError(t, a.List())
	assert.Equal(t, "Example:alice\n", out.String())
}

func TestAddCreatesDatabase(t *testing.T) {
	p := &scriptPrompter{
		lines:     []string{"", "aws", "60", "", "6", "2"},
		passwords: []string{"pw", "pw", "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQGEZA===="},
	}
	a, _, _ := testApp(t, p)
	require.NoError(t, a.Add(true, ""))

	v, err := a.codec.Load(a.cfg.Database, []byte("pw"))
	require.NoError(t, err)
	e, ok := v.Get("aws")
	require.True(t, ok)
	assert.Equal(t, uint64(60), e.Step())
	assert.Equal(t, 6, e.Digits())
	assert.Equal(t, "SHA256", e.Secret().Hash().String())
	assert.Equal(t, []byte("12345678901234567890123456789012"), e.Secret().Key())
}

func TestAddDeclined(t *testing.T) {
	p := &scriptPrompter{lines: []string{"n"}}
	a, _, _ := testApp(t, p)
	require.NoError(t, a.Add(false, ""))
	_, err := os.Stat(a.cfg.Database)
	assert.True(t, os.IsNotExist(err))
}

func TestAddRejectsDuplicateBeforeKey(t *testing.T) {
	p := &scriptPrompter{passwords: []string{"pw", "pw"}}
	a, _, _ := testApp(t, p)
	require.NoError(t, a.Create())

	p.passwords = []string{"pw", rfcKey}
	p.lines = []string{"github", "", "", "", ""}
	require.NoError(t, a.Add(false, ""))

	p.asked = nil
	p.passwords = []string{"pw"}
	p.lines = []string{"github"}
	assert.ErrorIs(t, a.Add(false, ""), vault.ErrDuplicateEntryName)
	assert.NotContains(t, strings.Join(p.asked, ","), "Secret key")
}

func TestAddInvalidInput(t *testing.T) {
	p := &scriptPrompter{passwords: []string{"pw", "pw"}}
	a, _, _ := testApp(t, p)
	require.NoError(t, a.Create())

	p.passwords = []string{"pw", "not base32 !"}
	p.lines = []string{"bad", "", "", "", ""}
	assert.Error(t, a.Add(true, ""))

	p.passwords = []string{"pw", rfcKey}
	p.lines = []string{"bad", "", "", "11", ""}
	assert.Error(t, a.Add(false, ""))

	p.passwords = []string{"pw", rfcKey}
	p.lines = []string{"bad", "zero", "", "", ""}
	assert.Error(t, a.Add(false, ""))
}

func TestWatchLoadsVault(t *testing.T) {
	p := &scriptPrompter{passwords: []string{"pw", "pw"}}
	a, _, _ := testApp(t, p)
	require.NoError(t, a.Create())

	p.passwords = []string{"pw"}
	assert.Error(t, a.Watch(), "empty database")

	p.passwords = []string{"pw", rfcKey}
	p.lines = []string{"github", "", "", "", ""}
	require.NoError(t, a.Add(false, ""))

	var watched []string
	a.watch = func(v *vault.Vault) error {
		watched = v.Names()
		return nil
	}
	p.passwords = []string{"pw"}
	require.NoError(t, a.Watch())
	assert.Equal(t, []string{"github"}, watched)
}
