package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"docstage/internal/port"
	"docstage/internal/strategy"
)

// Resolver expands file arguments, directories and doublestar patterns into
// the uploadable files they name.
type Resolver struct {
	excludes []string
}

func NewResolver(excludes []string) *Resolver {
	return &Resolver{excludes: excludes}
}

// Resolve keeps the order of patterns and drops duplicates. Files named
// explicitly must exist; files found through a pattern or a directory are
// kept only when some loading method accepts them.
func (r *Resolver) Resolve(patterns []string) ([]port.FileInfo, error) {
	var files []port.FileInfo
	seen := map[string]bool{}

	add := func(path string, info os.FileInfo) {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if seen[abs] || r.shouldExclude(path) {
			return
		}
		seen[abs] = true
		files = append(files, port.FileInfo{
			Path:    path,
			ModTime: info.ModTime().Unix(),
			Size:    info.Size(),
		})
	}

	for _, pattern := range patterns {
		if !hasMeta(pattern) {
			info, err := os.Stat(pattern)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				add(pattern, info)
				continue
			}
			pattern = filepath.Join(pattern, "**", "*")
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, path := range matches {
			if _, _, err := strategy.LoadMethodsForFile(path); err != nil {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				return nil, err
			}
			add(path, info)
		}
	}

	return files, nil
}

func (r *Resolver) shouldExclude(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range r.excludes {
		matched, err := doublestar.Match(pattern, slashed)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// ReadUpload reads a file into an upload named after its base name.
func ReadUpload(path string) (port.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return port.Upload{}, err
	}
	return port.Upload{Name: filepath.Base(path), Data: data}, nil
}
