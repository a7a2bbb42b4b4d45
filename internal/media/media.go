// Package media maps stored poster paths to public URLs and resolves the
// files behind them.
package media

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PosterRoute is the URL prefix poster files are served under.
const PosterRoute = "/api/storage/posters/"

// ErrNotFound is returned when a poster file does not exist.
var ErrNotFound = errors.New("poster not found")

// PosterURL returns the public URL of a stored poster path, or nil when
// the film has no poster.  Only the basename of the stored path is kept,
// so "posters/2024/abc.jpg" and "abc.jpg" map to the same URL.
func PosterURL(base, stored string) *string {
	name := Basename(stored)
	if name == "" {
		return nil
	}
	u := strings.TrimRight(base, "/") + PosterRoute + name
	return &u
}

// Basename strips every directory component from a stored path.  Both
// slash styles are accepted since paths come from user uploads.
func Basename(stored string) string {
	s := strings.TrimSpace(strings.ReplaceAll(stored, "\\", "/"))
	if s == "" {
		return ""
	}
	name := path.Base(s)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

// Library serves poster files from a directory on disk.
type Library struct {
	dir string
}

// NewLibrary returns a Library rooted at dir.
func NewLibrary(dir string) *Library { return &Library{dir: dir} }

// Resolve returns the absolute file path of a poster name.  Names that
// try to escape the directory are rejected as not found.
func (l *Library) Resolve(name string) (string, error) {
	if name == "" || name != Basename(name) {
		return "", ErrNotFound
	}
	p := filepath.Join(l.dir, name)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return p, nil
}
