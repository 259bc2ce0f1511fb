// Package sysfs provides small helpers for reading and writing kernel
// attribute files under sysfs and procfs. All paths are resolved against a
// configurable root so that tests can point the package at a fake tree.
package sysfs

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FS accesses attribute files below Root. The zero value is not usable;
// create one with New.
type FS struct {
	root string
}

// New returns an FS rooted at the given directory. An empty root means the
// real filesystem root.
func New(root string) *FS {
	if root == "" {
		root = "/"
	}
	return &FS{root: root}
}

// Path resolves an absolute attribute path against the FS root.
func (f *FS) Path(parts ...string) string {
	return filepath.Join(append([]string{f.root}, parts...)...)
}

// ReadString reads an attribute and returns its content with surrounding
// whitespace trimmed.
func (f *FS) ReadString(parts ...string) (string, error) {
	b, err := os.ReadFile(f.Path(parts...))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// ReadInt reads an attribute and parses it as a base-10 integer.
func (f *FS) ReadInt(parts ...string) (int, error) {
	s, err := f.ReadString(parts...)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}

// WriteString writes a value to an attribute file. Attribute files already
// exist in a real sysfs; permission bits only matter for test trees.
func (f *FS) WriteString(value string, parts ...string) error {
	return os.WriteFile(f.Path(parts...), []byte(value), 0o644)
}

// Exists reports whether an attribute or directory is present.
func (f *FS) Exists(parts ...string) bool {
	_, err := os.Stat(f.Path(parts...))
	return err == nil
}

// List returns the sorted names of entries in a directory. A missing
// directory yields an empty list, not an error.
func (f *FS) List(parts ...string) []string {
	entries, err := os.ReadDir(f.Path(parts...))
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// Glob returns paths relative to the FS root matching the given pattern.
func (f *FS) Glob(pattern string) []string {
	matches, err := filepath.Glob(filepath.Join(f.root, pattern))
	if err != nil {
		return nil
	}

	rel := make([]string, 0, len(matches))
	for _, m := range matches {
		r, err := filepath.Rel(f.root, m)
		if err != nil {
			continue
		}
		rel = append(rel, "/"+r)
	}
	sort.Strings(rel)
	return rel
}
