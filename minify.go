package sitebuild

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/pavdmyt/sitebuild/minifier"
)

// HtmlGlob selects the pages rewritten by [HtmlMinify].
const HtmlGlob = "**/*.html"

const extHtml = ".html"

// Matcher reports whether a slash-separated path relative
// to a walk root is selected.
type Matcher interface {
	Match(rel string) bool
}

type matcherGlob struct {
	*ignore.GitIgnore
}

// NewMatcher compiles gitignore-style globs into a [Matcher].
func NewMatcher(globs ...string) Matcher {
	return matcherGlob{GitIgnore: ignore.CompileIgnoreLines(globs...)}
}

func (m matcherGlob) Match(rel string) bool {
	if m.GitIgnore == nil {
		return false
	}

	return m.MatchesPath(rel)
}

func minifyCss(s CssMinify) error {
	logger := slog.Default().WithGroup("cssmin")

	for i := range s.Files {
		pair := s.Files[i]
		if len(pair.Src) == 0 || len(pair.Dst) == 0 {
			return fmt.Errorf("found empty cssmin path at index %d", i)
		}

		data, err := os.ReadFile(pair.Src)
		if err != nil {
			return fmt.Errorf("failed to read stylesheet '%s': %w", pair.Src, err)
		}

		min, err := minifier.MinifyCss(data)
		if err != nil {
			return fmt.Errorf("failed to minify stylesheet '%s': %w", pair.Src, err)
		}

		err = writeMirrored(pair.Src, pair.Dst, min)
		if err != nil {
			return err
		}

		logger.Info("minified", "src", pair.Src, "dst", pair.Dst, "before", len(data), "after", len(min))
	}

	return nil
}

func minifyHtml(s HtmlMinify) error {
	if len(s.SrcRoot) == 0 {
		return fmt.Errorf("found empty htmlmin src")
	}
	if len(s.DstRoot) == 0 {
		return fmt.Errorf("found empty htmlmin dst")
	}

	logger := slog.Default().WithGroup("htmlmin").With("src", s.SrcRoot, "dst", s.DstRoot)
	html := minifier.NewHtml(minifier.HtmlOptions{
		RemoveComments:     s.RemoveComments,
		CollapseWhitespace: s.CollapseWhitespace,
	})
	pages := NewMatcher(HtmlGlob)

	count := 0
	err := walkFiles(s.SrcRoot, func(file, rel string, _ fs.FileInfo) error {
		// Gitignore globs also match everything under a matching directory,
		// e.g. vendor.html/app.js, so the file itself must be a page.
		if path.Ext(rel) != extHtml || !pages.Match(rel) {
			return nil
		}

		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}

		min, err := html.Minify(data)
		if err != nil {
			return fmt.Errorf("failed to minify '%s': %w", file, err)
		}

		count++
		target := filepath.Join(s.DstRoot, filepath.FromSlash(rel))
		logger.Debug("minified", "path", file, "target", target)

		return writeMirrored(file, target, min)
	})
	if err != nil {
		return fmt.Errorf("walkDir failed for src '%s': %w", s.SrcRoot, err)
	}

	logger.Info("minified pages", "count", count)
	return nil
}

// writeMirrored writes data to dst with the permissions of src.
func writeMirrored(src, dst string, data []byte) error {
	perm := fs.FileMode(0o644)
	stat, err := os.Stat(src)
	if err == nil {
		perm = stat.Mode().Perm()
	}

	err = os.MkdirAll(filepath.Dir(dst), os.ModePerm)
	if err != nil {
		return fmt.Errorf("error preparing dst directory for '%s': %w", dst, err)
	}

	err = os.WriteFile(dst, data, perm)
	if err != nil {
		return fmt.Errorf("error writing to '%s': %w", dst, err)
	}

	return nil
}
