package sitebuild

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

func copyTree(s Copy) error {
	if len(s.SrcRoot) == 0 {
		return fmt.Errorf("found empty copy src")
	}
	if len(s.DstRoot) == 0 {
		return fmt.Errorf("found empty copy dst")
	}

	logger := slog.Default().WithGroup("copy").With("src", s.SrcRoot, "dst", s.DstRoot)

	stat, err := os.Lstat(s.SrcRoot)
	if err != nil {
		logger.Error("failed to stat copy src")
		return fmt.Errorf("failed to stat copy src '%s': %w", s.SrcRoot, err)
	}
	if fileIs(stat, os.ModeSymlink) {
		logger.Error("copy src is symlink")
		return fmt.Errorf("copy src is symlink: '%s'", s.SrcRoot)
	}
	if !stat.IsDir() {
		return fmt.Errorf("copy src is not a directory: '%s'", s.SrcRoot)
	}

	err = os.MkdirAll(s.DstRoot, os.ModePerm)
	if err != nil {
		return fmt.Errorf("failed to prepare copy dst '%s': %w", s.DstRoot, err)
	}

	copied := 0
	err = walkFiles(s.SrcRoot, func(path, rel string, info fs.FileInfo) error {
		target := filepath.Join(s.DstRoot, filepath.FromSlash(rel))
		logger.Debug("cp", "base", filepath.Base(path), "target", target)

		copied++
		return cp(path, target, info.Mode().Perm())
	})
	if err != nil {
		return fmt.Errorf("walkDir failed for src '%s', dst '%s': %w", s.SrcRoot, s.DstRoot, err)
	}

	logger.Info("copied files", "count", copied)
	return nil
}

func cp(src, dst string, perm fs.FileMode) error {
	b, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("error reading src: %w", err)
	}

	dir := filepath.Dir(dst)
	err = os.MkdirAll(dir, os.ModePerm)
	if err != nil {
		return fmt.Errorf("error preparing dst directory at '%s': %w", dir, err)
	}

	// Overwrite, but let the source mode win over an existing file's mode
	err = os.WriteFile(dst, b, perm)
	if err != nil {
		return fmt.Errorf("error writing to dst: %w", err)
	}

	return os.Chmod(dst, perm)
}

// walkFiles calls fn for every regular file under root,
// with rel being its slash-separated path relative to root.
// Dotfiles and dot directories below root are skipped, like grunt's
// default globbing; symlinks and other special files are ignored.
func walkFiles(root string, fn func(path, rel string, info fs.FileInfo) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		return fn(path, filepath.ToSlash(rel), info)
	})
}

func fileIs(stat fs.FileInfo, mode fs.FileMode) bool {
	return stat.Mode()&mode != 0
}
