// Package scan walks a Python project and extracts identifier definitions
// from every source file, so a session can learn an existing codebase's
// naming before new code is checked against it.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/HendryAvila/pyward/internal/extract"
)

var skipDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	"venv":          {},
	"env":           {},
	"build":         {},
	"dist":          {},
	"site-packages": {},
}

// Options bound a scan.
type Options struct {
	// MaxFiles caps the number of files scanned; 0 means no limit.
	MaxFiles int
	// MaxFileSize skips files larger than this many bytes; 0 means no limit.
	MaxFileSize int64
	// Workers is the number of files parsed concurrently; 0 means GOMAXPROCS.
	Workers int
}

// File is the extraction result for one source file.
type File struct {
	Path        string               `json:"path"`
	Identifiers []extract.Identifier `json:"identifiers"`
}

// Report is the result of scanning a project.
type Report struct {
	Root      string   `json:"root"`
	Files     []File   `json:"files"`
	Skipped   []string `json:"skipped,omitempty"`
	Truncated bool     `json:"truncated"`
}

// Files returns the Python files under root, relative to it and sorted.
// Hidden entries, common virtualenv and cache directories, and paths matched
// by root's .gitignore are skipped.
func Files(root string) ([]string, error) {
	gi := loadGitignore(root)

	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == root {
			return nil
		}
		name := d.Name()
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".egg-info") {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if filepath.Ext(name) != ".py" {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(out)
	return out, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// Project extracts identifiers from every Python file under root. Files are
// parsed concurrently; the report lists them in path order. Files that
// cannot be read or parsed, or that exceed MaxFileSize, are listed in
// Skipped.
func Project(ctx context.Context, root string, ex extract.Extractor, opts Options) (*Report, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	paths, err := Files(root)
	if err != nil {
		return nil, err
	}

	report := &Report{Root: root}
	if opts.MaxFiles > 0 && len(paths) > opts.MaxFiles {
		paths = paths[:opts.MaxFiles]
		report.Truncated = true
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			abs := filepath.Join(root, rel)
			if opts.MaxFileSize > 0 {
				if fi, err := os.Stat(abs); err == nil && fi.Size() > opts.MaxFileSize {
					return nil
				}
			}
			source, err := os.ReadFile(abs)
			if err != nil {
				return nil
			}
			ids, err := ex.Extract(gctx, source)
			if err != nil {
				return nil
			}
			results[i] = &File{Path: filepath.ToSlash(rel), Identifiers: ids}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, f := range results {
		if f == nil {
			report.Skipped = append(report.Skipped, filepath.ToSlash(paths[i]))
			continue
		}
		report.Files = append(report.Files, *f)
	}
	return report, nil
}
