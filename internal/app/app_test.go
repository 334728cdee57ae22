package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/snowprofile/pkg/config"
)

func TestRunStopsWhenContextIsCancelled(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "snowprofile.yaml")
	body := "archive:\n  dsn: " + filepath.Join(dir, "archive.db") + "\nserver:\n  listen-addr: 127.0.0.1\n  port: 18473\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- New(config.NewYAMLProvider(cfgPath)).Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after the context was cancelled")
	}
	assert.FileExists(t, filepath.Join(dir, "archive.db"))
}

func TestRunConfigError(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("archive:\n  driver: mysql\n"), 0o600))
	assert.Error(t, New(config.NewYAMLProvider(cfgPath)).Run(context.Background()))
}
