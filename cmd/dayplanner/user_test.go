package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command against a sqlite config in a temp dir.
func runCLI(t *testing.T, cfgFile, stdin string, args ...string) (string, error) {
	t.Helper()

	configPath, verbose = "", false
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", cfgFile}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	content := `
session:
  secret: cli-test-secret-0123456789
database:
  driver: sqlite
  path: ` + filepath.Join(dir, "planner.db") + `
`
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o600))
	return cfgFile
}

func TestUserCommands(t *testing.T) {
	cfgFile := writeConfig(t)

	out, err := runCLI(t, cfgFile, "secret1\nsecret1\n", "user", "add", "alice", "--email", "alice@example.com")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Created user alice")

	out, err = runCLI(t, cfgFile, "secret1\nsecret1\n", "user", "add", "alice", "--email", "other@example.com")
	assert.Error(t, err)
	assert.Contains(t, out, "username already exists")

	out, err = runCLI(t, cfgFile, "newpass1\nnewpass1\n", "user", "passwd", "alice")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Password updated for alice")

	out, err = runCLI(t, cfgFile, "", "user", "delete", "alice")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Deleted user alice")

	out, err = runCLI(t, cfgFile, "", "user", "delete", "alice")
	assert.Error(t, err)
	assert.Contains(t, out, `user "alice" not found`)
}

func TestUserAdd_RequiresEmail(t *testing.T) {
	cfgFile := writeConfig(t)

	_, err := runCLI(t, cfgFile, "secret1\nsecret1\n", "user", "add", "bob")
	assert.ErrorContains(t, err, "email")
}
