package archive_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golift.io/pipelogger/archive"
	"golift.io/pipelogger/filer"
)

func TestNewLayout(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	layout := archive.NewLayout(filepath.Join("/", "var", "log", "service.log"), ".xz", nil)
	assert.Equal(filepath.Join("/", "var", "log"), layout.Dir)
	assert.Equal("service", layout.Stem)
	assert.Equal(".log", layout.Ext)
	assert.Equal(".xz", layout.CompressExt)
	assert.Equal(filer.Default(), layout.Filer)

	layout = archive.NewLayout(filepath.Join("/", "tmp", "service.tar.log"), ".xz", nil)
	assert.Equal("service.tar", layout.Stem, "only the last extension is split off")
	assert.Equal(".log", layout.Ext)

	layout = archive.NewLayout(filepath.Join("/", "tmp", "output"), ".xz", nil)
	assert.Equal("output", layout.Stem)
	assert.Empty(layout.Ext)

	layout = archive.NewLayout(filepath.Join("/", "tmp", ".hidden"), ".xz", nil)
	assert.Equal(".hidden", layout.Stem, "a dot-file has no extension")
	assert.Empty(layout.Ext)
}

func TestArchiveName(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	layout := archive.NewLayout("/var/log/service.log", ".xz", nil)
	when := time.Date(2024, time.March, 9, 17, 45, 1, 7*int(time.Millisecond)+999, time.UTC)

	assert.Equal("-2024-03-09-17-45-01-007", archive.Stamp(when))
	assert.Len(archive.Stamp(when), archive.StampLen)
	assert.Equal(24, archive.StampLen)
	assert.Equal("service-2024-03-09-17-45-01-007.log", layout.ArchiveName(when))
	assert.Equal("service-2024-03-09-17-45-01-007.log.xz", layout.CompressedName(layout.ArchiveName(when)))

	// Local times are written in UTC.
	zone := time.FixedZone("UTC+2", 2*60*60)
	assert.Equal("service-2024-03-09-15-45-01-000.log",
		layout.ArchiveName(time.Date(2024, time.March, 9, 17, 45, 1, 0, zone)))
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	times := []time.Time{
		time.Date(1999, time.December, 31, 23, 59, 59, 999*int(time.Millisecond), time.UTC),
		time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 29, 12, 30, 45, 123456789, time.UTC),
		time.Date(2099, time.July, 4, 1, 2, 3, 4*int(time.Millisecond), time.UTC),
	}

	for _, path := range []string{"/var/log/service.log", "/var/log/service", "/var/log/app.out.txt"} {
		layout := archive.NewLayout(path, ".xz", nil)

		for _, when := range times {
			name := layout.ArchiveName(when)

			rec, ok := layout.Parse(name)
			if !assert.True(ok, "an archive name must parse: %s", name) {
				continue
			}

			assert.Equal(name, rec.Name)
			assert.Equal(archive.Stamp(when), rec.Stamp)
			assert.True(rec.Time.Equal(when.Truncate(time.Millisecond)), "%v != %v", rec.Time, when)
			assert.True(rec.Plain)
			assert.False(rec.Compressed)

			rec, ok = layout.Parse(layout.CompressedName(name))
			assert.True(ok, "a compressed archive name must parse: %s", name)
			assert.Equal(name, rec.Name, "the record name is always the uncompressed name")
			assert.False(rec.Plain)
			assert.True(rec.Compressed)
		}
	}
}

func TestParseRejects(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	layout := archive.NewLayout("/var/log/app.log", ".xz", nil)

	for _, name := range []string{
		"app.log",                                // the live file.
		"app",                                    // too short.
		"app-2024-01-02-03-04-05.log",            // no milliseconds.
		"app-2024-01-02-03-04-05-006.txt",        // wrong extension.
		"app-2024-01-02-03-04-05-006.log.gz",     // wrong compression suffix.
		"app-2024-01-02-03-04-05-006-old.log",    // junk after the stamp.
		"app-2024-01-02-03-04-05-006.log.xz.bak", // junk after the suffix.
		"app-2024-13-02-03-04-05-006.log",        // month 13.
		"app-2024-02-30-03-04-05-006.log",        // February 30.
		"app-0999-01-02-03-04-05-006.log",        // year out of range.
		"app-2024-01-02-03-04-65-006.log",        // second 65.
		"app-2024-01-02-03-04-05-06x.log",        // bad milliseconds.
		"app_2024-01-02-03-04-05-006.log",        // wrong joiner.
		"apple-2024-01-02-03-04-05-006.log",      // another log sharing the prefix.
		"other-2024-01-02-03-04-05-006.log",      // another log.
		"",
	} {
		_, ok := layout.Parse(name)
		assert.False(ok, "must not match: %q", name)
	}

	layout.CompressExt = ""
	_, ok := layout.Parse("app-2024-01-02-03-04-05-006.log.xz")
	assert.False(ok, "compressed archives are ignored without a compress suffix")
}
