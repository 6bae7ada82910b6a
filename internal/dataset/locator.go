// Package dataset finds dataset folders and candidate tables on disk.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned when no folder or candidate file qualifies.
	ErrNotFound = errors.New("not found")
	// ErrOutsideBase is returned for folder arguments that leave the base directory.
	ErrOutsideBase = errors.New("folder outside dataset base")
)

// Entry kinds in a listing.
const (
	KindFile      = "file"
	KindDirectory = "directory"
)

// Entry is one item of a dataset listing. Directories carry CSVCount and
// files carry Size.
type Entry struct {
	Kind         string `json:"kind"`
	Name         string `json:"name"`
	RelativePath string `json:"relativePath"`
	CSVCount     int    `json:"csvCount,omitempty"`
	Size         *int64 `json:"size,omitempty"`
}

// Listing is the result of walking the base directory.
type Listing struct {
	Path  string  `json:"path"`
	Files []Entry `json:"files"`
}

var race1Path = regexp.MustCompile(`race[\s_-]?1\b`)

// Locator walks a dataset base directory. The base is fixed at construction.
type Locator struct {
	base   string
	tracks []string
}

// NewLocator creates a Locator rooted at base. tracks lists preferred track
// names for default folder selection, most preferred first.
func NewLocator(base string, tracks []string) *Locator {
	return &Locator{base: filepath.Clean(base), tracks: tracks}
}

// Base returns the dataset base directory.
func (l *Locator) Base() string {
	return l.base
}

// List enumerates dataset folders (directories holding at least one CSV,
// recursively) and the CSV and ZIP files under the base directory.
func (l *Locator) List(ctx context.Context) (Listing, error) {
	nodes, err := walk(ctx, l.base)
	if err != nil {
		return Listing{Path: l.base, Files: []Entry{}}, err
	}

	files := make([]Entry, 0, len(nodes))
	for _, n := range nodes {
		switch {
		case n.dir && n.csv > 0:
			files = append(files, Entry{Kind: KindDirectory, Name: n.name, RelativePath: n.rel, CSVCount: n.csv})
		case !n.dir && (hasExt(n.name, ".csv") || hasExt(n.name, ".zip")):
			size := n.size
			files = append(files, Entry{Kind: KindFile, Name: n.name, RelativePath: n.rel, Size: &size})
		}
	}
	return Listing{Path: l.base, Files: files}, nil
}

// Folders returns the relative paths of every dataset folder in walk order.
func (l *Locator) Folders(ctx context.Context) ([]string, error) {
	nodes, err := walk(ctx, l.base)
	if err != nil {
		return nil, err
	}
	var folders []string
	for _, n := range nodes {
		if n.dir && n.csv > 0 {
			folders = append(folders, n.rel)
		}
	}
	return folders, nil
}

// DefaultFolder picks the folder used when a caller does not name one: a
// preferred track's race 1, then any folder of a preferred track, then the
// first folder found.
func (l *Locator) DefaultFolder(ctx context.Context) (string, error) {
	folders, err := l.Folders(ctx)
	if err != nil {
		return "", err
	}
	if len(folders) == 0 {
		return "", fmt.Errorf("default folder under %s: %w", l.base, ErrNotFound)
	}

	for _, track := range l.tracks {
		track = strings.ToLower(track)
		for _, f := range folders {
			lf := strings.ToLower(f)
			if strings.Contains(lf, track) && race1Path.MatchString(lf) {
				return f, nil
			}
		}
	}
	for _, track := range l.tracks {
		track = strings.ToLower(track)
		for _, f := range folders {
			if strings.Contains(strings.ToLower(f), track) {
				return f, nil
			}
		}
	}
	return folders[0], nil
}

// Resolve maps a folder relative to the base to an absolute path. Absolute
// paths and paths escaping the base are rejected.
func (l *Locator) Resolve(folder string) (string, error) {
	folder = filepath.FromSlash(folder)
	if folder == "" || !filepath.IsLocal(folder) {
		return "", fmt.Errorf("resolve %q: %w", folder, ErrOutsideBase)
	}
	return filepath.Join(l.base, folder), nil
}

// Rel returns path relative to the base, slash separated.
func (l *Locator) Rel(path string) string {
	rel, err := filepath.Rel(l.base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// FindCSV returns the table under folder that best fits purpose. Ties keep
// the file found first. Purposes with a required name pattern return
// ErrNotFound when nothing matches.
func (l *Locator) FindCSV(ctx context.Context, folder string, purpose Purpose) (string, error) {
	dir, err := l.Resolve(folder)
	if err != nil {
		return "", err
	}
	nodes, err := walk(ctx, dir)
	if err != nil {
		return "", fmt.Errorf("find %s table in %s: %w", purpose, folder, err)
	}

	best, bestScore := "", 0
	for _, n := range nodes {
		if n.dir || !isTable(n.name) {
			continue
		}
		if s := purpose.score(strings.ToLower(n.name)); s > bestScore {
			best, bestScore = n.abs, s
		}
	}
	if best == "" {
		return "", fmt.Errorf("find %s table in %s: %w", purpose, folder, ErrNotFound)
	}
	return best, nil
}

func isTable(name string) bool {
	return hasExt(name, ".csv") || hasExt(name, ".xlsx")
}

func hasExt(name, ext string) bool {
	return strings.EqualFold(filepath.Ext(name), ext)
}

func skipEntry(e os.DirEntry) bool {
	name := e.Name()
	return strings.HasPrefix(name, ".") || name == "__MACOSX"
}
