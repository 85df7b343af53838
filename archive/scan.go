package archive

import (
	"fmt"
	"os"
	"sort"

	"github.com/samber/lo"
)

// Scan builds the archive history from a directory listing. Only regular
// files that Parse accepts are kept. An archive found both compressed and
// uncompressed (compression cut short by an exit) is one record with both
// flags set. This does no I/O.
func (l *Layout) Scan(entries []os.FileInfo) *History {
	var (
		list  = &History{Records: []Record{}}
		index = make(map[string]int)
	)

	regular := lo.Filter(entries, func(info os.FileInfo, _ int) bool {
		return info != nil && info.Mode().IsRegular()
	})

	for _, info := range regular {
		rec, ok := l.Parse(info.Name())
		if !ok {
			continue // not our file.
		}

		if idx, seen := index[rec.Stamp]; seen {
			list.Records[idx].Plain = list.Records[idx].Plain || rec.Plain
			list.Records[idx].Compressed = list.Records[idx].Compressed || rec.Compressed

			continue
		}

		index[rec.Stamp] = len(list.Records)
		list.Records = append(list.Records, rec)
	}

	sort.Sort(list)

	return list
}

// Load lists the log directory and returns the archive history found there.
func (l *Layout) Load() (*History, error) {
	entries, err := l.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading archive directory: %w", err)
	}

	return l.Scan(entries), nil
}
