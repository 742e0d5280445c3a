package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears key for the test and restores it afterwards. godotenv never
// overrides a variable that is present, even when it is empty.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadEnvFile_OwnerFromFile(t *testing.T) {
	unsetEnv(t, "CONTACTCTL_OWNER")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CONTACTCTL_OWNER=owner-from-file\n"), 0o600))

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "owner-from-file", resolveOwner(""))
	assert.Equal(t, "flag-owner", resolveOwner("  flag-owner "), "the flag wins")
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
	assert.NoError(t, loadEnvFile(""))
}

func TestLoadEnvFile_Malformed(t *testing.T) {
	unsetEnv(t, "BROKEN")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BROKEN=\"unterminated\n"), 0o600))

	assert.Error(t, loadEnvFile(path))
}

func TestResolveOwner_Empty(t *testing.T) {
	unsetEnv(t, "CONTACTCTL_OWNER")
	assert.Equal(t, "", resolveOwner("   "))
}
