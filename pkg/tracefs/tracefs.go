// Package tracefs reads the kernel's trace event descriptions from a
// tracefs mount. It is a thin synchronous file-read layer: callers get
// raw format text and simple enable/disable toggles, nothing more.
package tracefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Tracefs wraps one tracefs mount root (usually /sys/kernel/tracing or
// /sys/kernel/debug/tracing).
type Tracefs struct {
	root   string
	logger *zap.Logger
}

// NewAt returns a Tracefs rooted at an explicit path, without verifying
// that the path is a real tracefs mount. Intended for tests and
// non-standard mounts; use New to discover the live mount.
func NewAt(root string, logger *zap.Logger) *Tracefs {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracefs{
		root:   root,
		logger: logger.Named("tracefs"),
	}
}

// Root returns the mount root this instance reads from.
func (t *Tracefs) Root() string {
	return t.root
}

// ReadEventFormat returns the contents of the format file for one trace
// event. An event that does not exist on this kernel yields ("", nil):
// absence is an expected outcome of kernel version and config variance,
// not an error. Errors are reserved for real I/O failures such as
// permission problems.
func (t *Tracefs) ReadEventFormat(group, name string) (string, error) {
	path := filepath.Join(t.root, "events", group, name, "format")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		t.logger.Debug("Event format not present", zap.String("group", group), zap.String("event", name))
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading format for %s/%s: %w", group, name, err)
	}
	return string(data), nil
}

// ReadPageHeaderFormat returns the contents of events/header_page, the
// kernel's description of the per-page ring buffer header.
func (t *Tracefs) ReadPageHeaderFormat() (string, error) {
	data, err := os.ReadFile(filepath.Join(t.root, "events", "header_page"))
	if err != nil {
		return "", fmt.Errorf("reading page header format: %w", err)
	}
	return string(data), nil
}

// AvailableEvents returns the "group:name" entries of available_events,
// one per trace event this kernel can emit.
func (t *Tracefs) AvailableEvents() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(t.root, "available_events"))
	if err != nil {
		return nil, fmt.Errorf("reading available events: %w", err)
	}
	var events []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			events = append(events, line)
		}
	}
	return events, nil
}

// EnableEvent turns on tracing for one event.
func (t *Tracefs) EnableEvent(group, name string) error {
	return t.writeEventEnable(group, name, "1")
}

// DisableEvent turns off tracing for one event.
func (t *Tracefs) DisableEvent(group, name string) error {
	return t.writeEventEnable(group, name, "0")
}

func (t *Tracefs) writeEventEnable(group, name, value string) error {
	path := filepath.Join(t.root, "events", group, name, "enable")
	if err := os.WriteFile(path, []byte(value), 0); err != nil {
		return fmt.Errorf("writing enable for %s/%s: %w", group, name, err)
	}
	t.logger.Debug("Toggled event",
		zap.String("group", group),
		zap.String("event", name),
		zap.String("enable", value),
	)
	return nil
}
