//go:build !linux

package tracefs

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// New is unavailable off Linux; tracefs is a Linux kernel facility.
// NewAt still works everywhere for tests against a fake tree.
func New(logger *zap.Logger) (*Tracefs, error) {
	return nil, fmt.Errorf("tracefs is not available on %s", runtime.GOOS)
}
