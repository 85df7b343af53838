package pipelogger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// readBufferSize is the read buffer used by ReadFrom. Longer lines still work.
const readBufferSize = 16 << 10

// ReadFrom reads lines from r until EOF and writes each one, newline
// included, with Write. A final line without a newline is written too.
// It stops at the first write error. A clean EOF returns a nil error.
// This satisfies the io.ReaderFrom interface, so io.Copy(logger, os.Stdin) works.
func (l *Logger) ReadFrom(r io.Reader) (int64, error) {
	var (
		total  int64
		reader = bufio.NewReaderSize(r, readBufferSize)
	)

	for {
		line, rerr := reader.ReadBytes('\n')
		if len(line) > 0 {
			n, err := l.Write(line)
			total += int64(n)

			if err != nil {
				return total, err
			}
		}

		if errors.Is(rerr, io.EOF) {
			return total, nil
		} else if rerr != nil {
			return total, fmt.Errorf("reading input: %w", rerr)
		}
	}
}

// Our Logger must satify an io.ReaderFrom.
var _ io.ReaderFrom = (*Logger)(nil)
