package pipelogger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/samber/lo"
	"golift.io/pipelogger/archive"
	"golift.io/pipelogger/compressor"
)

// Custom errors returned by a running Logger.
var (
	ErrNoSpace = errors.New("pipelogger: the space is not enough")
	ErrClosed  = errors.New("pipelogger: logger is closed")
)

// Logger is what you get in return for providing a Config. Write lines to it.
// You must obtain a Logger by calling New().
type Logger struct {
	config  *Config          // validated copy of the incoming configuration.
	layout  *archive.Layout  // archive naming, scanning and pruning.
	history *archive.History // known archives, oldest first.
	last    time.Time        // time stamp of the newest archive ever written.
	size    uint64           // bytes in the live file.
	file    *os.File         // the live file.
	tee     io.Writer        // mirror for every line.
	printf  func(msg string, v ...any)
	failed  error // sticky: set once the live file is in an unknown state.

	log    chan []byte   // incoming log messages passed across go routines.
	resp   chan *resp    // response sent back across go routines.
	signal chan struct{} // used for Rotate.
	stop   chan struct{} // used for Close.
	done   chan struct{} // closed when the go routine exits.
}

// resp is used to send responses back across our go routines.
type resp struct {
	size int64
	err  error
}

// lockedWriter serializes writes from the Logger and background compression reports.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.w.Write(b) //nolint:wrapcheck
}

// New validates your configuration, rebuilds the archive history from the
// log directory, opens (or creates) the log file for appending and returns a
// Logger ready for writes. Configuration problems are returned before any
// file is created.
func New(config *Config) (*Logger, error) {
	cfg := *config
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := &Logger{
		config: &cfg,
		layout: archive.NewLayout(cfg.Filepath, compressor.Suffix, cfg.Filer),
	}

	logger.setOutputs()

	history, err := logger.layout.Load()
	if err != nil {
		return nil, err
	}

	logger.history = history
	if newest, ok := history.Newest(); ok {
		logger.last = newest.Time
	}

	if err := logger.openLog(false); err != nil {
		return nil, err
	}

	logger.log = make(chan []byte)
	logger.resp = make(chan *resp)
	logger.signal = make(chan struct{})
	logger.stop = make(chan struct{})
	logger.done = make(chan struct{})

	go logger.processLogChannel()

	return logger, nil
}

// setOutputs picks the tee writer and the compression report sink.
func (l *Logger) setOutputs() {
	stdout := &lockedWriter{w: l.config.Stdout}
	stderr := &lockedWriter{w: l.config.Stderr}

	var report io.Writer

	switch l.config.Tee {
	case TeeStdout:
		l.tee, report = stdout, stdout
	case TeeStderr:
		l.tee, report = stderr, stderr
	case TeeNone:
		fallthrough
	default:
		l.tee, report = io.Discard, stderr
	}

	if l.config.Compress && l.config.Archiver == nil {
		l.config.Archiver = &compressor.Compressor{Filer: l.config.Filer}
	}

	if l.printf = l.config.Printf; l.printf == nil {
		l.printf = func(msg string, v ...any) {
			_, _ = fmt.Fprintf(report, msg+"\n", v...)
		}
	}
}

// processLogChannel runs in a go routine and reads the incoming logs channel.
// Received logs are dispatched to the write method. Replies are then sent to the
// response channel. This also handles log rotation and routine shutdown. Everything
// except background compression happens in this one go routine.
func (l *Logger) processLogChannel() {
	defer close(l.done)

	for {
		select {
		case b := <-l.log:
			size, err := l.write(b)
			l.resp <- &resp{int64(size), err}
		case <-l.signal:
			size, err := l.rotate()
			l.resp <- &resp{size, err}
		case <-l.stop:
			l.resp <- &resp{err: l.close()}

			return
		}
	}
}

// Write mirrors b to the tee target, appends it to the log file and rotates
// the file when it reaches the configured size. The rotation finishes before
// Write returns. This satisfies the io.Writer interface.
func (l *Logger) Write(b []byte) (int, error) {
	select {
	case l.log <- b:
	case <-l.done:
		return 0, ErrClosed
	}

	resp := <-l.resp

	return int(resp.size), resp.err
}

// write does the per-line work - from a channel message.
func (l *Logger) write(b []byte) (int, error) {
	if l.failed != nil {
		return 0, l.failed
	}

	_, teeErr := l.tee.Write(b)

	size, err := l.file.Write(b)
	l.size += uint64(size) //nolint:gosec

	switch {
	case errors.Is(err, syscall.ENOSPC):
		return size, l.fail(fmt.Errorf("%w: %w", ErrNoSpace, err))
	case err != nil:
		return size, l.fail(fmt.Errorf("writing log file: %w", err))
	case size != len(b):
		return size, l.fail(fmt.Errorf("%w: wrote %d of %d bytes", ErrNoSpace, size, len(b)))
	}

	if l.config.FileSize > 0 && l.size >= l.config.FileSize {
		if _, err := l.rotate(); err != nil {
			return size, err
		}
	}

	if teeErr != nil {
		return size, fmt.Errorf("mirroring log line to %s: %w", l.config.Tee, teeErr)
	}

	return size, nil
}

// Rotate forces the log to rotate immediately. Returns the size of the rotated log.
func (l *Logger) Rotate() (int64, error) {
	select {
	case l.signal <- struct{}{}:
	case <-l.done:
		return 0, ErrClosed
	}

	resp := <-l.resp

	return resp.size, resp.err
}

// rotate copies the live file to a new archive and truncates it - from a channel message.
// Any failure leaves the live file in an unknown state, so it is fatal.
func (l *Logger) rotate() (int64, error) {
	if l.failed != nil {
		return 0, l.failed
	}

	size := int64(l.size) //nolint:gosec

	if err := l.close(); err != nil {
		return size, l.fail(err)
	}

	name := l.archiveName()
	fpath := l.layout.Path(name)

	if _, err := l.config.Filer.Copy(l.config.Filepath, fpath); err != nil {
		return size, l.fail(fmt.Errorf("copying log file to archive: %w", err))
	}

	rec, _ := l.layout.Parse(name)
	l.history.Append(rec)
	l.last = rec.Time

	evicted := l.layout.Retain(l.history, l.config.FileCount)

	evictedNew := lo.ContainsBy(evicted, func(r archive.Record) bool { return r.Stamp == rec.Stamp })
	if l.config.Compress && !evictedNew {
		l.config.Archiver.Background(fpath, l.report)
	}

	if err := l.openLog(true); err != nil {
		return size, l.fail(err)
	}

	if l.config.PostRotate != nil {
		l.config.PostRotate(l.config.Filepath, fpath)
	}

	return size, nil
}

// archiveName returns a name for the next archive. Names always sort after
// every archive written before, even within one millisecond or when the
// clock steps back, so no archive is ever overwritten.
func (l *Logger) archiveName() string {
	when := time.Now().UTC()
	if !l.last.IsZero() && archive.Stamp(when) <= archive.Stamp(l.last) {
		when = l.last.Add(time.Millisecond)
	}

	return l.layout.ArchiveName(when)
}

// report receives background compression results. An archive that no longer
// exists was pruned before it could be compressed; that is not reported.
func (l *Logger) report(report *compressor.Report) {
	if errors.Is(report.Error, os.ErrNotExist) {
		return
	}

	if report.Error != nil || l.config.Printf != nil {
		compressor.Log(report, l.printf)
	}
}

// openLog opens the log file for writing. The file is created if missing.
// With truncate the file is emptied, otherwise writes append to it and the
// existing length counts toward the rotation size.
func (l *Logger) openLog(truncate bool) error {
	flag := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if truncate {
		flag |= os.O_TRUNC
	}

	file, err := l.config.Filer.OpenFile(l.config.Filepath, flag, l.config.FileMode)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	l.size = 0

	if !truncate {
		info, err := file.Stat()
		if err != nil {
			file.Close()
			return fmt.Errorf("stating log file: %w", err)
		}

		l.size = uint64(info.Size()) //nolint:gosec
	}

	l.file = file

	return nil
}

// Close stops the go routine, then flushes and closes the log file.
// Later calls to Write, Rotate or Close return ErrClosed.
// Background compressions are not waited for.
func (l *Logger) Close() error {
	select {
	case l.stop <- struct{}{}:
	case <-l.done:
		return ErrClosed
	}

	return (<-l.resp).err
}

// close flushes and closes the live file - from a channel message.
func (l *Logger) close() error {
	if l.file == nil {
		return nil
	}

	file := l.file
	l.file = nil

	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("syncing log file %s: %w", l.config.Filepath, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing log file %s: %w", l.config.Filepath, err)
	}

	return nil
}

// fail records a fatal error. Every later write or rotation returns it.
func (l *Logger) fail(err error) error {
	l.failed = err
	return err
}

// Size returns the number of bytes in the live file.
// It is only meaningful once Write has returned.
func (l *Logger) Size() uint64 {
	return l.size
}

// History returns the uncompressed names of the known archives, oldest first.
// Do not call this while another go routine writes.
func (l *Logger) History() []string {
	return l.history.Names()
}

// Our Logger must satify an io.WriteCloser.
var _ io.WriteCloser = (*Logger)(nil)
