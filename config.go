package pipelogger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golift.io/pipelogger/filer"
)

// FileMode is the default POSIX mode for a new log file.
const FileMode os.FileMode = 0o644

// Tee selects where every logged line is mirrored.
type Tee uint8

// Tee targets.
const (
	TeeNone Tee = iota
	TeeStdout
	TeeStderr
)

// String makes Tee a fmt.Stringer.
func (t Tee) String() string {
	switch t {
	case TeeStdout:
		return "stdout"
	case TeeStderr:
		return "stderr"
	case TeeNone:
		return "none"
	default:
		return fmt.Sprintf("Tee(%d)", uint8(t))
	}
}

// Configuration errors returned by New. Check them with errors.Is.
var (
	ErrEmptyPath      = errors.New("pipelogger: log file path is required")
	ErrIsDirectory    = errors.New("pipelogger: log file path is a directory")
	ErrNotRegular     = errors.New("pipelogger: log file is not a regular file")
	ErrNotWritable    = errors.New("pipelogger: not writable")
	ErrNoParent       = errors.New("pipelogger: parent directory does not exist")
	ErrRotateTooSmall = errors.New("pipelogger: rotation size is too small")
	ErrInvalidCount   = errors.New("pipelogger: invalid log file count")
)

// MinFileSize is the smallest rotation size accepted.
const MinFileSize = 2

// Config is the data needed to create a new Logger.
// New copies it; changing a Config after New has no effect on the Logger.
type Config struct {
	Filepath  string      // REQUIRED: Path to the log file. Made absolute.
	FileSize  uint64      // Rotate when the log reaches this many bytes. 0 disables rotation.
	FileCount int         // Maximum log files: archives kept is FileCount-1. 0 is unlimited. Needs FileSize.
	Compress  bool        // xz-compress archives in the background. Needs FileSize.
	Tee       Tee         // Mirror every line to stdout, stderr or nowhere.
	FileMode  os.FileMode // POSIX mode for a new log file. Default: FileMode.
	// Streams behind the Tee targets. Defaults: os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	// Archiver compresses archives when Compress is true. Default: &compressor.Compressor{}.
	Archiver Archiver
	// Filer overrides file procedures. Default: filer.Default().
	Filer filer.Filer
	// PostRotate is called after every rotation with the log path and the new archive path.
	// It runs on the write path, so make it snappy.
	PostRotate func(fileName, archive string)
	// Printf receives every compression report. When nil, only failed
	// compressions are reported, as a line on the Tee target (stderr if Tee is none).
	Printf func(msg string, v ...any)
}

// validate checks the config and fills in defaults. It reads the file
// system but never creates anything.
func (c *Config) validate() error {
	if c.Filepath == "" {
		return ErrEmptyPath
	}

	if strings.HasSuffix(c.Filepath, "/") || strings.HasSuffix(c.Filepath, string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrIsDirectory, c.Filepath)
	}

	abs, err := filepath.Abs(c.Filepath)
	if err != nil {
		return fmt.Errorf("resolving log file path: %w", err)
	}

	c.Filepath = abs

	if c.FileSize != 0 && c.FileSize < MinFileSize {
		return fmt.Errorf("%w: got %d, want at least %d bytes", ErrRotateTooSmall, c.FileSize, MinFileSize)
	}

	if c.FileCount < 0 {
		return fmt.Errorf("%w: got %d, want at least 1", ErrInvalidCount, c.FileCount)
	}

	if c.FileSize == 0 {
		// Count and compression only apply to rotated files.
		c.FileCount = 0
		c.Compress = false
	}

	c.setDefaults()

	if err := c.checkParent(); err != nil {
		return err
	}

	return c.checkFile()
}

func (c *Config) setDefaults() {
	if c.FileMode == 0 {
		c.FileMode = FileMode
	}

	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}

	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}

	if c.Filer == nil {
		c.Filer = filer.Default()
	}
}

// checkParent makes sure the log directory exists and we can make files in it.
func (c *Config) checkParent() error {
	parent := filepath.Dir(c.Filepath)

	info, err := c.Filer.Stat(parent)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNoParent, parent, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrNoParent, parent)
	}

	if !writable(parent, info) {
		return fmt.Errorf("%w: %s", ErrNotWritable, parent)
	}

	return nil
}

// checkFile makes sure an existing log file is a writable regular file.
func (c *Config) checkFile() error {
	info, err := c.Filer.Stat(c.Filepath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("checking log file: %w", err)
	}

	switch {
	case info.IsDir():
		return fmt.Errorf("%w: %s", ErrIsDirectory, c.Filepath)
	case !info.Mode().IsRegular():
		return fmt.Errorf("%w: %s", ErrNotRegular, c.Filepath)
	case !writable(c.Filepath, info):
		return fmt.Errorf("%w: %s", ErrNotWritable, c.Filepath)
	default:
		return nil
	}
}
