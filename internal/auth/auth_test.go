package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountStoreCreateAndVerify(t *testing.T) {
	store := NewAccountStore(filepath.Join(t.TempDir(), "admin.json"))

	assert.False(t, store.Exists())
	assert.False(t, store.Verify("admin", "pw"))

	require.NoError(t, store.Create("admin", "pw"))
	assert.True(t, store.Exists())

	assert.True(t, store.Verify("admin", "pw"))
	assert.False(t, store.Verify("admin", "wrong"))
	assert.False(t, store.Verify("someone", "pw"))
}

func TestAccountFileDoesNotStorePlaintext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin.json")
	store := NewAccountStore(path)
	require.NoError(t, store.Create("admin", "hunter2"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
	assert.Contains(t, string(data), "password_hash")
}

func TestSessionRoundTrip(t *testing.T) {
	token, err := IssueSession("secret", "admin")
	require.NoError(t, err)

	claims, err := ParseSession("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.True(t, claims.Admin)
}

func TestSessionRejectsWrongSecret(t *testing.T) {
	token, err := IssueSession("secret", "admin")
	require.NoError(t, err)

	_, err = ParseSession("other-secret", token)
	assert.Error(t, err)
}

func TestSessionRejectsGarbage(t *testing.T) {
	_, err := ParseSession("secret", "not.a.token")
	assert.Error(t, err)
}
