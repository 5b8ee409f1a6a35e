package note

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	forbiddenFilenameChars = regexp.MustCompile(`[<>:*?"“”]`)
	pathSeparatorChars     = regexp.MustCompile(`[/\\]`)
)

// File is a path-backed handle to one note on disk.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string {
	return f.path
}

// Name returns the file name without its directory.
func (f *File) Name() string {
	return filepath.Base(f.path)
}

// NameWithoutExtension returns the file name without directory and
// extension.
func (f *File) NameWithoutExtension() string {
	name := f.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func (f *File) Read() (string, error) {
	contents, err := os.ReadFile(f.path)
	if err != nil {
		return "", err
	}
	return string(contents), nil
}

// Write replaces the file contents in place with a single truncating
// overwrite.
func (f *File) Write(contents string) error {
	return os.WriteFile(f.path, []byte(contents), 0o644)
}

// Rename moves the file to the given name, escaped for the
// filesystem, within its current directory. It returns the new path.
func (f *File) Rename(name string) (string, error) {
	newPath := filepath.Join(filepath.Dir(f.path), EscapeFilename(name))
	if err := os.Rename(f.path, newPath); err != nil {
		return "", err
	}
	f.path = newPath
	return newPath, nil
}

// EscapeFilename drops characters that are unsafe in file names and
// turns path separators into dashes.
func EscapeFilename(name string) string {
	return forbiddenFilenameChars.ReplaceAllString(
		pathSeparatorChars.ReplaceAllString(name, "-"),
		"",
	)
}
