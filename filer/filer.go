// Package filer is an interface used in the pipelogger subpackages.
// You may override this to gain more control of operations in your app.
package filer

//go:generate mockgen -destination=../mocks/filer.go -package=mocks golift.io/pipelogger/filer Filer
//go:generate mockgen -destination=../mocks/fileinfo.go -package=mocks os FileInfo

import (
	"fmt"
	"io"
	"os"
)

// Filer is used to override file-managing procedures.
type Filer interface {
	Remove(fileName string) error
	ReadDir(dirPath string) ([]os.FileInfo, error)
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
	Stat(fileName string) (os.FileInfo, error)
	Copy(src, dst string) (int64, error)
}

// Default returns a Filer interface that works, using default procedures.
func Default() Filer {
	return &File{}
}

// File can be embedded in a custom type to provide the missing methods for the Filer interface.
type File struct{}

// Remove provides os.Remove.
func (f *File) Remove(fileName string) error {
	return os.Remove(fileName)
}

// ReadDir provides os.ReadDir, but returns full file info for each entry.
// Entries that vanish between the listing and the stat are skipped.
func (f *File) ReadDir(dirname string) ([]os.FileInfo, error) {
	entries, err := os.ReadDir(dirname)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	infos := make([]os.FileInfo, 0, len(entries))

	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}

		infos = append(infos, info)
	}

	return infos, nil
}

// OpenFile provides os.OpenFile.
func (f *File) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, flag, perm) //nolint:gosec
}

// Stat provides os.Stat.
func (f *File) Stat(fileName string) (os.FileInfo, error) {
	return os.Stat(fileName)
}

// Copy copies the bytes of src into a new (or truncated) dst and fsyncs dst
// before returning. dst gets the same permission bits as src. A partially
// written dst is removed when the copy fails.
func (f *File) Copy(src, dst string) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("opening copy source: %w", err)
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return 0, fmt.Errorf("stating copy source: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()) //nolint:gosec
	if err != nil {
		return 0, fmt.Errorf("opening copy destination: %w", err)
	}

	size, err := io.Copy(dstFile, srcFile)
	if err == nil {
		err = dstFile.Sync()
	}

	if cerr := dstFile.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = os.Remove(dst)
		return size, fmt.Errorf("%s -> %s: %w", src, dst, err)
	}

	return size, nil
}
