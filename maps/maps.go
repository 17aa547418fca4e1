// Package maps ships the sample world maps and serves map directories,
// with files on disk taking precedence over the embedded copies.
package maps

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

//go:embed *.tmx
var mapsFS embed.FS

// Embedded returns the sample maps.
func Embedded() fs.FS {
	return mapsFS
}

// FS returns dir layered over the embedded maps. An empty dir serves the
// embedded maps only.
func FS(dir string) fs.FS {
	if dir == "" {
		return mapsFS
	}
	return overlay{disk: os.DirFS(dir), fallback: mapsFS}
}

type overlay struct {
	disk     fs.FS
	fallback fs.FS
}

func (o overlay) Open(name string) (fs.File, error) {
	f, err := o.disk.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.fallback.Open(name)
}

// ModTime reports when name was last written in dir.
func ModTime(dir, name string) (time.Time, bool) {
	if dir == "" {
		return time.Time{}, false
	}
	info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
