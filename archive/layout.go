// Package archive decides the names of rotated log files, rebuilds the list
// of existing archives from a directory listing, and prunes old archives.
//
// Archives live next to the log file and are named with a fixed-width UTC
// time stamp between the file's stem and its extension:
//
//	service.log -> service-2006-01-02-15-04-05-000.log
//
// Compressed archives keep that name and gain a suffix, for example
// service-2006-01-02-15-04-05-000.log.xz. Nothing else is persisted: the
// directory is the only index of prior rotations.
package archive

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golift.io/pipelogger/filer"
)

// Some constants this package uses.
const (
	// StampLayout is the Go time layout of the date and time part of a stamp.
	StampLayout = "2006-01-02-15-04-05"
	// StampLen is the length of a full stamp: joiner, date/time, joiner, milliseconds.
	StampLen = len(Joiner) + len(StampLayout) + len(Joiner) + 3
	// Joiner separates the stem, the date/time and the milliseconds.
	Joiner = "-"
)

// stampPattern matches a full stamp, like -2024-03-09-17-45-01-007.
var stampPattern = regexp.MustCompile(`^-[1-2][0-9]{3}(-[0-5][0-9]){5}-[0-9]{3}$`)

// Layout defines how time-stamped archive logs have their file names decided.
// Create one with NewLayout.
type Layout struct {
	filer.Filer

	Dir         string // Directory holding the log file and its archives.
	Stem        string // Log file base name without extension.
	Ext         string // Log file extension, including the dot. May be empty.
	CompressExt string // Suffix added to compressed archives, like .xz. Empty disables matching them.
}

// Record is one archive, derived entirely from its file name.
type Record struct {
	Name       string    // Uncompressed archive file name, without directory.
	Stamp      string    // Fixed-width stamp embedded in Name.
	Time       time.Time // Stamp parsed back to a UTC time.
	Plain      bool      // The uncompressed file was found.
	Compressed bool      // The compressed file was found.
}

// NewLayout returns the naming layout for a log file path.
// A nil Filer is replaced with filer.Default().
func NewLayout(logPath, compressExt string, fileSys filer.Filer) *Layout {
	if fileSys == nil {
		fileSys = filer.Default()
	}

	base := filepath.Base(logPath)

	ext := filepath.Ext(base)
	if ext == base { // .bashrc has no extension.
		ext = ""
	}

	return &Layout{
		Filer:       fileSys,
		Dir:         filepath.Dir(logPath),
		Stem:        strings.TrimSuffix(base, ext),
		Ext:         ext,
		CompressExt: compressExt,
	}
}

// Stamp formats a time as an archive stamp. The time is converted to UTC.
func Stamp(when time.Time) string {
	when = when.UTC()

	return fmt.Sprintf("%s%s%s%03d", Joiner, when.Format(StampLayout), Joiner, when.Nanosecond()/int(time.Millisecond))
}

// ArchiveName returns the archive file name for a rotation at the provided time.
func (l *Layout) ArchiveName(when time.Time) string {
	return l.Stem + Stamp(when) + l.Ext
}

// CompressedName returns the name an archive has once compressed.
func (l *Layout) CompressedName(archiveName string) string {
	return archiveName + l.CompressExt
}

// Path joins a file name to the log directory.
func (l *Layout) Path(fileName string) string {
	return filepath.Join(l.Dir, fileName)
}

// Parse checks if a file name belongs to this layout. It returns false for the
// live log file and for anything that only shares a prefix with the stem.
func (l *Layout) Parse(fileName string) (Record, bool) {
	rest, found := strings.CutPrefix(fileName, l.Stem)
	if !found || len(rest) < StampLen {
		return Record{}, false
	}

	stamp, tail := rest[:StampLen], rest[StampLen:]

	when, valid := parseStamp(stamp)
	if !valid {
		return Record{}, false
	}

	rec := Record{Name: l.Stem + stamp + l.Ext, Stamp: stamp, Time: when}

	switch {
	case tail == l.Ext:
		rec.Plain = true
	case l.CompressExt != "" && tail == l.Ext+l.CompressExt:
		rec.Compressed = true
	default:
		return Record{}, false
	}

	return rec, true
}

// parseStamp turns a stamp back into a time. Out-of-range values like month 13 are rejected.
func parseStamp(stamp string) (time.Time, bool) {
	if !stampPattern.MatchString(stamp) {
		return time.Time{}, false
	}

	dateEnd := len(Joiner) + len(StampLayout)

	when, err := time.Parse(StampLayout, stamp[len(Joiner):dateEnd])
	if err != nil {
		return time.Time{}, false
	}

	msec, err := strconv.Atoi(stamp[dateEnd+len(Joiner):])
	if err != nil {
		return time.Time{}, false
	}

	return when.Add(time.Duration(msec) * time.Millisecond), true
}
