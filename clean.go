package sitebuild

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// clean empties s.Dir but keeps the directory itself.
// A missing directory is treated as already clean.
func clean(s Clean) error {
	if len(s.Dir) == 0 {
		return fmt.Errorf("found empty clean dir")
	}

	logger := slog.Default().WithGroup("clean").With("dir", s.Dir)

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("nothing to clean")
			return nil
		}

		return fmt.Errorf("failed to read clean dir '%s': %w", s.Dir, err)
	}

	for i := range entries {
		name := entries[i].Name()
		if s.KeepHidden && strings.HasPrefix(name, ".") {
			continue
		}

		target := filepath.Join(s.Dir, name)
		logger.Debug("cleaning up", "target", target)

		err := os.RemoveAll(target)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove '%s': %w", target, err)
		}
	}

	return nil
}
