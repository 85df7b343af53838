package archive

import (
	"sort"

	"github.com/samber/lo"
)

// History is the ordered list of known archives, oldest first.
// It satisfies sort.Interface; stamps are fixed-width, so sorting
// them as strings sorts them by time.
type History struct {
	Records []Record
}

// Len is part of sort.Interface.
func (h *History) Len() int {
	return len(h.Records)
}

// Swap is part of sort.Interface.
func (h *History) Swap(i, j int) {
	h.Records[i], h.Records[j] = h.Records[j], h.Records[i]
}

// Less is part of the sort.Sort interface.
// We always want the slice with the oldest files first.
func (h *History) Less(i, j int) bool {
	return h.Records[i].Stamp < h.Records[j].Stamp
}

// Append adds a freshly rotated archive to the end of the history.
func (h *History) Append(rec Record) {
	h.Records = append(h.Records, rec)
}

// Newest returns the most recent archive, if there is one.
func (h *History) Newest() (Record, bool) {
	if len(h.Records) == 0 {
		return Record{}, false
	}

	return h.Records[len(h.Records)-1], true
}

// Names returns the uncompressed archive file names, oldest first.
func (h *History) Names() []string {
	return lo.Map(h.Records, func(rec Record, _ int) string { return rec.Name })
}

// Our History must satify a sort.Interface.
var _ sort.Interface = (*History)(nil)
