package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultRoundTrip(t *testing.T) {
	v, err := New("unit-test-master-key", "")
	require.NoError(t, err)

	ciphertext, err := v.Encrypt("sk-live-credential")
	require.NoError(t, err)
	require.NotEqual(t, "sk-live-credential", ciphertext)

	plain, err := v.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "sk-live-credential", plain)
}

func TestVaultRejectsTamperedCiphertext(t *testing.T) {
	v, err := New("unit-test-master-key", "")
	require.NoError(t, err)

	ciphertext, err := v.Encrypt("secret")
	require.NoError(t, err)

	tampered := "A" + ciphertext[1:]
	_, err = v.Decrypt(tampered)
	require.Error(t, err)
}

func TestVaultRejectsWrongKey(t *testing.T) {
	v1, err := New("key-one", "")
	require.NoError(t, err)
	v2, err := New("key-two", "")
	require.NoError(t, err)

	ciphertext, err := v1.Encrypt("secret")
	require.NoError(t, err)

	_, err = v2.Decrypt(ciphertext)
	require.Error(t, err)
}

func TestVaultKeyFilePrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "master.key")
	require.NoError(t, os.WriteFile(path, []byte("file-key\n"), 0o600))

	fromFile, err := New("inline-key", path)
	require.NoError(t, err)
	fromValue, err := New("file-key", "")
	require.NoError(t, err)

	ciphertext, err := fromValue.Encrypt("secret")
	require.NoError(t, err)
	plain, err := fromFile.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "secret", plain)
}

func TestVaultRequiresKey(t *testing.T) {
	_, err := New("", "")
	require.Error(t, err)
}
