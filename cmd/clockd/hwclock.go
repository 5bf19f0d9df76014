package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// fileClock substitutes for a battery-backed realtime clock on hardware that
// has none: the last known time is kept in a small file. After a power cycle
// the clock resumes from the stored value, which is at most a couple of
// minutes stale.
type fileClock struct {
	path string
}

func newFileClock(path string) *fileClock {
	return &fileClock{path: path}
}

func (c *fileClock) Read() (int64, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read clock file: %w", err)
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse clock file: %w", err)
	}
	return sec, nil
}

func (c *fileClock) Write(sec int64) error {
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.FormatInt(sec, 10)), 0o600); err != nil {
		return fmt.Errorf("failed to write clock file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace clock file: %w", err)
	}
	return nil
}
