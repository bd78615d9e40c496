package preflight

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("executable not found")

type Finder interface {
	LookPath(string) (string, error)
}

// PathFinder searches executables in an ordered list of directories. When
// exts is not empty, each candidate is also tried with every extension
// appended.
type PathFinder struct {
	dirs []string
	exts []string
}

func NewFinder(env Environment) *PathFinder {
	var f PathFinder
	f.SetDirs(filepath.SplitList(Lookup(env, "PATH")))
	if runtime.GOOS == "windows" {
		f.SetExts(".exe", ".bat", ".cmd")
	}
	return &f
}

func (f *PathFinder) SetDirs(dirs []string) {
	for _, d := range dirs {
		if d == "" {
			continue
		}
		f.dirs = append(f.dirs, d)
	}
}

func (f *PathFinder) SetExts(exts ...string) {
	f.exts = append(f.exts, exts...)
}

func (f *PathFinder) Dirs() []string {
	return f.dirs
}

func (f *PathFinder) LookPath(cmd string) (string, error) {
	if cmd == "" {
		return "", errors.Wrap(ErrNotFound, "empty command")
	}
	if strings.ContainsRune(cmd, filepath.Separator) || strings.ContainsRune(cmd, '/') {
		if file, ok := f.try(cmd); ok {
			return file, nil
		}
		return "", errors.WithMessage(ErrNotFound, cmd)
	}
	for _, d := range f.dirs {
		if file, ok := f.try(filepath.Join(d, cmd)); ok {
			return file, nil
		}
	}
	return "", errors.WithMessage(ErrNotFound, cmd)
}

func (f *PathFinder) try(file string) (string, bool) {
	if executable(file) {
		return file, true
	}
	for _, e := range f.exts {
		if filepath.Ext(file) == e {
			continue
		}
		if executable(file + e) {
			return file + e, true
		}
	}
	return "", false
}

func executable(file string) bool {
	i, err := os.Stat(file)
	if err != nil || !i.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return i.Mode().Perm()&0111 != 0
}
