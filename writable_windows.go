package pipelogger

import "os"

// writable checks the read-only attribute; Windows has no access(2).
func writable(_ string, info os.FileInfo) bool {
	return info.Mode().Perm()&0o200 != 0
}
