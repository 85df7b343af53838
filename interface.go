package pipelogger

import "golift.io/pipelogger/compressor"

//go:generate mockgen -destination=mocks/pipelogger.go -package=mocks golift.io/pipelogger Archiver

// Archiver allows passing in your own logic for archive compression.
// *compressor.Compressor is the one included with this library.
type Archiver interface {
	// Background is called with the path of every new archive when compression
	// is enabled. It must return immediately; the Logger never waits for the
	// work to finish and never cancels it. The callback may be nil.
	Background(fileName string, callback func(report *compressor.Report))
}

// Our compressor must satify an Archiver.
var _ Archiver = (*compressor.Compressor)(nil)
