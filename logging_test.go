package main

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggingRotatesHistory(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	path := filepath.Join(t.TempDir(), "mortify.log")
	require.NoError(t, os.WriteFile(path, []byte("run 2"), 0644))
	require.NoError(t, os.WriteFile(path+".1", []byte("run 1"), 0644))
	require.NoError(t, os.WriteFile(path+".2", []byte("run 0"), 0644))

	l, err := setupLogging(path, 2)
	require.NoError(t, err)
	defer l.Close()

	log.SetFlags(0)
	log.Print("run 3")

	assertFile(t, path, "run 3\n")
	assertFile(t, path+".1", "run 2")
	assertFile(t, path+".2", "run 1")
	assert.NoFileExists(t, path+".3")
}

func TestSetupLoggingDefaultsToOneBackup(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	path := filepath.Join(t.TempDir(), "mortify.log")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	l, err := setupLogging(path, 0)
	require.NoError(t, err)
	defer l.Close()

	assertFile(t, path+".1", "previous")
	assert.NoFileExists(t, path+".2")
}

func TestReopenFollowsExternalRotation(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	dir := t.TempDir()
	path := filepath.Join(dir, "mortify.log")
	l, err := setupLogging(path, 1)
	require.NoError(t, err)
	defer l.Close()

	log.SetFlags(0)
	log.Print("before")
	require.NoError(t, os.Rename(path, filepath.Join(dir, "moved.log")))
	require.NoError(t, l.Reopen())
	log.Print("after")

	assertFile(t, filepath.Join(dir, "moved.log"), "before\n")
	assertFile(t, path, "after\n")
}

func TestSetupLoggingEmptyPath(t *testing.T) {
	_, err := setupLogging("", 1)
	assert.Error(t, err)
}

func assertFile(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))
}
