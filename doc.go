// Package pipelogger is a process-log sink. It reads lines from a process's
// output, stores them in a log file, optionally mirrors every line to stdout
// or stderr, and rotates the file once it reaches a configured size.
//
// Rotation copies the live file to a time-stamped archive next to it
// (service.log -> service-2006-01-02-15-04-05-000.log), then truncates the
// live file. Archives may be xz-compressed in the background, and a maximum
// file count prunes the oldest archives. The directory itself is the only
// record of earlier rotations; it is scanned once on startup, so ordering and
// pruning survive restarts.
//
// A Logger is an io.WriteCloser and an io.ReaderFrom:
//
//	logger, err := pipelogger.New(&pipelogger.Config{
//		Filepath:  "/var/log/service.log",
//		FileSize:  10 * 1000 * 1000,
//		FileCount: 4,
//		Compress:  true,
//		Tee:       pipelogger.TeeStdout,
//	})
//	if err != nil {
//		panic(err)
//	}
//	defer logger.Close()
//
//	_, err = logger.ReadFrom(os.Stdin)
//
// The archive, compressor and filer sub packages hold the naming scheme,
// the xz compressor and the overridable file procedures.
package pipelogger
