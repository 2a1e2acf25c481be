package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestManagementCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AUTHGATE_DATABASE_FILE", filepath.Join(dir, "authgate.db"))
	t.Setenv("AUTHGATE_SECRETS_FILE", filepath.Join(dir, "secrets.env"))
	t.Setenv("LOG_LEVEL", "error")

	out, err := run(t, "migrate")
	require.NoError(t, err)
	require.Contains(t, out, "migrations applied")

	out, err = run(t, "principal", "add", "Owner@Example.com", "--admin")
	require.NoError(t, err)
	require.Contains(t, out, "added owner@example.com")
	require.Contains(t, out, "admin=true")

	_, err = run(t, "principal", "add", "owner@example.com")
	require.Error(t, err)

	out, err = run(t, "app", "add", "notes", "https://notes.example.com/cb")
	require.NoError(t, err)
	require.Contains(t, out, "added notes -> https://notes.example.com/cb")

	_, err = run(t, "app", "add", "notes", "ftp://bad")
	require.Error(t, err)

	_, err = run(t, "app", "add", "only-name")
	require.Error(t, err)
}
