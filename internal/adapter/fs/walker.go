package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	ErrRootNotFound = errors.New("path does not exist")
	ErrNotDirectory = errors.New("path is not a directory")
	ErrInvalidUTF8  = errors.New("file is not valid UTF-8")
)

// Walker lists the files under a root that match an extension allow-list,
// skipping ignored directories. Optional doublestar globs narrow the result
// further; they are matched against slash-separated relative paths.
type Walker struct {
	extensions map[string]struct{}
	ignoreDirs map[string]struct{}
	includes   []string
	excludes   []string
}

// Option configures a Walker.
type Option func(*Walker)

// WithExtensions sets the extension allow-list (".go", ".md", ...). An
// empty list accepts every extension.
func WithExtensions(exts []string) Option {
	return func(w *Walker) {
		w.extensions = make(map[string]struct{}, len(exts))
		for _, e := range exts {
			if e != "" && !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			w.extensions[e] = struct{}{}
		}
	}
}

// WithIgnoreDirs sets directory base names that are never descended into.
func WithIgnoreDirs(dirs []string) Option {
	return func(w *Walker) {
		w.ignoreDirs = make(map[string]struct{}, len(dirs))
		for _, d := range dirs {
			w.ignoreDirs[d] = struct{}{}
		}
	}
}

// WithPatterns sets doublestar include and exclude globs.
func WithPatterns(includes, excludes []string) Option {
	return func(w *Walker) {
		w.includes = includes
		w.excludes = excludes
	}
}

func NewWalker(opts ...Option) *Walker {
	w := &Walker{
		extensions: map[string]struct{}{},
		ignoreDirs: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk returns the absolute paths of all matching files under root, sorted.
func (w *Walker) Walk(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, ignored := w.ignoreDirs[d.Name()]; ignored {
				return filepath.SkipDir
			}
			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if w.shouldExclude(filepath.ToSlash(relPath) + "/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !w.hasAllowedExt(d.Name()) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (w *Walker) hasAllowedExt(name string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}
	_, ok := w.extensions[ext]
	return ok
}

func (w *Walker) shouldInclude(path string) bool {
	if len(w.includes) == 0 {
		return true
	}
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// ReadFile reads a whole text file. Files that are not valid UTF-8 are
// rejected with ErrInvalidUTF8.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrInvalidUTF8, path)
	}
	return string(data), nil
}
