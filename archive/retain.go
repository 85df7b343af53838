package archive

// Retain deletes the oldest archives while the history holds maxCount or more
// of them, so at most maxCount-1 archives remain next to the live file.
// Both the uncompressed and the compressed file of each evicted archive are
// removed; removal errors are ignored because a file that is already gone is
// the goal anyway. A maxCount below 1 means unlimited. Evicted records are
// returned, oldest first.
func (l *Layout) Retain(list *History, maxCount int) []Record {
	if maxCount < 1 {
		return nil
	}

	var gone []Record

	for list.Len() >= maxCount {
		rec := list.Records[0]
		list.Records = list.Records[1:]

		_ = l.Remove(l.Path(rec.Name))

		if l.CompressExt != "" {
			_ = l.Remove(l.Path(l.CompressedName(rec.Name)))
		}

		gone = append(gone, rec)
	}

	return gone
}
