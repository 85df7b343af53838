//go:build !windows

package pipelogger_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
	"golift.io/pipelogger"
)

func TestConfigNotRegular(t *testing.T) {
	t.Parallel()

	fifo := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, unix.Mkfifo(fifo, 0o600))

	logger, err := pipelogger.New(&pipelogger.Config{Filepath: fifo})
	assert.ErrorIs(t, err, pipelogger.ErrNotRegular)
	assert.Nil(t, logger)
}
