package filesystem

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

// BillyFileSystem implements FileSystem on top of a billy.Filesystem.
// With memfs it backs dry runs that never touch the disk.
//
// billy filesystems are not safe for concurrent use, so every method
// holds mu. This also makes each existence check and the create that
// follows it atomic.
type BillyFileSystem struct {
	mu sync.Mutex
	fs billy.Filesystem
}

// NewBillyFileSystem wraps an existing billy filesystem
func NewBillyFileSystem(bfs billy.Filesystem) *BillyFileSystem {
	return &BillyFileSystem{fs: bfs}
}

// NewMemFileSystem creates an empty in-memory filesystem
func NewMemFileSystem() *BillyFileSystem {
	return NewBillyFileSystem(memfs.New())
}

func (b *BillyFileSystem) ReadFile(path string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (b *BillyFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.requireParent("open", path); err != nil {
		return err
	}
	return util.WriteFile(b.fs, path, data, perm)
}

func (b *BillyFileSystem) CreateFile(path string, data []byte, perm fs.FileMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.requireParent("open", path); err != nil {
		return err
	}
	if _, err := b.fs.Lstat(path); err == nil {
		return &fs.PathError{Op: "open", Path: path, Err: fs.ErrExist}
	}

	f, err := b.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	_, werr := f.Write(data)
	return errors.Join(werr, f.Close())
}

func (b *BillyFileSystem) RemoveAll(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return util.RemoveAll(b.fs, path)
}

func (b *BillyFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	infos, err := b.fs.ReadDir(path)
	if err != nil {
		return nil, err
	}

	entries := make([]fs.DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, fs.FileInfoToDirEntry(info))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

// Mkdir emulates an exclusive single-level mkdir; billy only offers
// MkdirAll, which is idempotent and creates parents.
func (b *BillyFileSystem) Mkdir(path string, perm fs.FileMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.requireParent("mkdir", path); err != nil {
		return err
	}
	if _, err := b.fs.Lstat(path); err == nil {
		return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrExist}
	}
	return b.fs.MkdirAll(path, perm)
}

func (b *BillyFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.fs.MkdirAll(path, perm)
}

func (b *BillyFileSystem) Stat(path string) (fs.FileInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.fs.Stat(path)
}

func (b *BillyFileSystem) Exists(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.fs.Lstat(path)
	return err == nil
}

func (b *BillyFileSystem) Glob(pattern string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return util.Glob(b.fs, pattern)
}

func (b *BillyFileSystem) requireParent(op, path string) error {
	parent := filepath.Dir(filepath.Clean(path))
	if parent == "." || parent == string(filepath.Separator) {
		return nil
	}
	info, err := b.fs.Stat(parent)
	if err != nil {
		return &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
	}
	if !info.IsDir() {
		return &fs.PathError{Op: op, Path: path, Err: errors.New("not a directory")}
	}
	return nil
}
