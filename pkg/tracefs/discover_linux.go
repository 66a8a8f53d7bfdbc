//go:build linux

package tracefs

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// mountCandidates are the standard tracefs locations, newest first.
// /sys/kernel/tracing exists since 4.1; the debugfs path covers older
// kernels and distros that only mount debugfs.
var mountCandidates = []string{
	"/sys/kernel/tracing",
	"/sys/kernel/debug/tracing",
}

// New discovers the live tracefs mount and returns a Tracefs rooted
// there. A candidate only qualifies if it statfs's as tracefs (or as
// debugfs, for the legacy path).
func New(logger *zap.Logger) (*Tracefs, error) {
	for _, root := range mountCandidates {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		var st unix.Statfs_t
		if err := unix.Statfs(root, &st); err != nil {
			continue
		}
		switch st.Type {
		case unix.TRACEFS_MAGIC, unix.DEBUGFS_MAGIC:
			return NewAt(root, logger), nil
		}
	}
	return nil, fmt.Errorf("no tracefs mount found (tried %v); is tracefs mounted and readable?", mountCandidates)
}
