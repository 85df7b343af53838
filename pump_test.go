package pipelogger_test

import (
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"golift.io/pipelogger"
)

func TestReadFrom(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	dir := t.TempDir()
	logFile := filepath.Join(dir, "app.log")
	logger := newLogger(t, &pipelogger.Config{Filepath: logFile, FileSize: 10})

	input := "abcde\nfghij\ntail"
	n, err := logger.ReadFrom(strings.NewReader(input))
	assert.NoError(err, "EOF is a clean finish")
	assert.EqualValues(len(input), n)
	assert.NoError(logger.Close())

	history := logger.History()
	if assert.Len(history, 1, "rotation happens on the line that crosses the threshold") {
		assert.Equal("abcde\nfghij\n", readFile(t, filepath.Join(dir, history[0])))
	}

	assert.Equal("tail", readFile(t, logFile), "a final line without a newline is kept")
}

func TestReadFromLongLine(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	logFile := filepath.Join(t.TempDir(), "app.log")
	logger := newLogger(t, &pipelogger.Config{Filepath: logFile})

	long := strings.Repeat("x", 100000) + "\n"
	n, err := logger.ReadFrom(strings.NewReader(long + "short\n"))
	assert.NoError(err)
	assert.EqualValues(len(long)+6, n)
	assert.NoError(logger.Close())
	assert.Equal(long+"short\n", readFile(t, logFile))
}

func TestReadFromError(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	logFile := filepath.Join(t.TempDir(), "app.log")
	logger := newLogger(t, &pipelogger.Config{Filepath: logFile})

	defer logger.Close()

	n, err := logger.ReadFrom(iotest.ErrReader(errTest))
	assert.ErrorIs(err, errTest)
	assert.EqualValues(0, n)
}

func TestReadFromClosed(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	logger := newLogger(t, &pipelogger.Config{Filepath: filepath.Join(t.TempDir(), "app.log")})
	assert.NoError(logger.Close())

	_, err := logger.ReadFrom(strings.NewReader("late\n"))
	assert.ErrorIs(err, pipelogger.ErrClosed)
}
