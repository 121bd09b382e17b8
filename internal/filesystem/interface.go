package filesystem

import (
	"io/fs"
)

// FileSystem provides an abstraction over file operations for testability
type FileSystem interface {
	// File operations
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	// CreateFile creates a new file holding data. It fails with an error
	// matching fs.ErrExist when the path is already taken.
	CreateFile(path string, data []byte, perm fs.FileMode) error
	RemoveAll(path string) error

	// Directory operations
	ReadDir(path string) ([]fs.DirEntry, error)
	// Mkdir creates a single directory. It fails with an error matching
	// fs.ErrExist when the path is already taken.
	Mkdir(path string, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error

	// Path operations
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) bool

	// Glob patterns
	Glob(pattern string) ([]string, error)
}
