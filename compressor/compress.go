// Package compressor xz-compresses rotated log files. Compression is meant to
// run in the background after a rotation: Background never blocks the caller
// and reports the outcome to a callback.
package compressor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ulikunitz/xz"
	"golift.io/pipelogger/filer"
)

// Suffix is appended to a fileName to make the new compressed file name.
const Suffix = ".xz"

// Defaults used when a Compressor member is left zero.
const (
	// DefaultDictCap is the xz dictionary size of the strongest preset (-9).
	DefaultDictCap = 64 << 20
	// DefaultBufferSize is the size of each chunk read from the source file.
	DefaultBufferSize = 16 << 10
)

// Compressor compresses files with xz. The zero value is ready to use.
type Compressor struct {
	Filer      filer.Filer // Overridable file procedures. Default: filer.Default().
	DictCap    int         // xz dictionary capacity in bytes. Default: DefaultDictCap.
	BufferSize int         // Chunk size used to stream the source. Default: DefaultBufferSize.
}

// Report contains a report of the compression operation.
// Always check for Error to make sure the New* data is valid.
type Report struct {
	OldFile string
	NewFile string
	OldSize int64
	NewSize int64
	Elapsed time.Duration
	Error   error
}

// Compress xz's a file and returns a report. Blocks until finished.
// On success the original file is deleted. On failure the original is kept
// and any partial compressed file is deleted.
func (c *Compressor) Compress(fileName string) (*Report, error) {
	report := &Report{
		OldFile: fileName,
		NewFile: fileName + Suffix,
	}

	oldFile, err := c.filer().Stat(report.OldFile)
	if report.Error = err; report.Error != nil {
		return report, fmt.Errorf("stating old file: %w", report.Error)
	}

	report.OldSize = oldFile.Size()
	start := time.Now()
	report.NewSize, report.Error = c.compress(report.OldFile, report.NewFile, oldFile.Mode().Perm())
	report.Elapsed = time.Since(start)

	if report.Error != nil {
		return report, fmt.Errorf("compressor error: %w", report.Error)
	}

	return report, nil
}

// Background runs a file compression in a new go routine and returns immediately.
// The report is sent to the callback (if not nil) when compression finishes.
// Nothing waits for the go routine; an exit may leave the original uncompressed.
func (c *Compressor) Background(fileName string, callback func(report *Report)) {
	go func() {
		report, _ := c.Compress(fileName)

		if callback != nil {
			callback(report)
		}
	}()
}

// Log sends a report to a custom procedure.
func Log(report *Report, printf func(msg string, v ...any)) {
	if printf == nil || report == nil {
		return
	}

	if report.Error != nil {
		printf("Compression Error after %v: %v", report.Elapsed.Round(time.Millisecond), report.Error)
	} else {
		printf("Compression Finished in %v: %s/%s -> %s/%s", report.Elapsed.Round(time.Millisecond),
			report.OldFile, humanize.IBytes(uint64(report.OldSize)), //nolint:gosec
			report.NewFile, humanize.IBytes(uint64(report.NewSize))) //nolint:gosec
	}
}

func (c *Compressor) filer() filer.Filer {
	if c.Filer == nil {
		return filer.Default()
	}

	return c.Filer
}

// compress does the "hard" work: Open the old file, open the new file, create an xz writer,
// stream the old file through it in chunks, close all open file handles, and lastly delete the old file.
func (c *Compressor) compress(oldFile, newFile string, mode os.FileMode) (size int64, err error) {
	fileSys := c.filer()

	defer func() { // First, so it executes last.
		if err != nil {
			_ = fileSys.Remove(newFile)
		} else {
			_ = fileSys.Remove(oldFile)
		}
	}()

	src, err := fileSys.OpenFile(oldFile, os.O_RDONLY, 0)
	if err != nil {
		return 0, fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	dst, err := fileSys.OpenFile(newFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return 0, fmt.Errorf("opening xz file: %w", err)
	}

	err = c.stream(dst, src)
	if err == nil {
		err = dst.Sync()
	}

	if cerr := dst.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing xz file: %w", cerr)
	}

	if err != nil {
		return 0, fmt.Errorf("%s -> %s: %w", oldFile, newFile, err)
	}

	info, err := fileSys.Stat(newFile)
	if err != nil {
		return 0, fmt.Errorf("stating xz file: %w", err)
	}

	return info.Size(), nil
}

// stream copies src into an xz writer wrapped around dst, one chunk at a time.
func (c *Compressor) stream(dst io.Writer, src io.Reader) error {
	dictCap, bufSize := c.DictCap, c.BufferSize
	if dictCap <= 0 {
		dictCap = DefaultDictCap
	}

	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	xzw, err := xz.WriterConfig{DictCap: dictCap}.NewWriter(dst)
	if err != nil {
		return fmt.Errorf("creating xz writer: %w", err)
	}

	buf := make([]byte, bufSize)

	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			written, werr := xzw.Write(buf[:n])
			if werr != nil {
				return fmt.Errorf("writing xz data: %w", werr)
			}

			if written != n {
				return fmt.Errorf("writing xz data: %w", io.ErrShortWrite)
			}
		}

		if errors.Is(rerr, io.EOF) {
			break
		} else if rerr != nil {
			return fmt.Errorf("reading source file: %w", rerr)
		}
	}

	if err := xzw.Close(); err != nil {
		return fmt.Errorf("finishing xz stream: %w", err)
	}

	return nil
}
