package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockFileSystem provides in-memory filesystem for testing.
// It is safe for concurrent use so parallel materialization can run on it.
type MockFileSystem struct {
	mu       sync.Mutex
	files    map[string]*MockFile
	failures map[string]error
	order    []string
}

// MockFile represents a file in the mock filesystem
type MockFile struct {
	Content []byte
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

// mockDirEntry implements fs.DirEntry
type mockDirEntry struct {
	info fs.FileInfo
}

func (m *mockDirEntry) Name() string               { return m.info.Name() }
func (m *mockDirEntry) IsDir() bool                { return m.info.IsDir() }
func (m *mockDirEntry) Type() fs.FileMode          { return m.info.Mode().Type() }
func (m *mockDirEntry) Info() (fs.FileInfo, error) { return m.info, nil }

// NewMockFileSystem creates a new MockFileSystem with an empty root
func NewMockFileSystem() *MockFileSystem {
	mfs := &MockFileSystem{
		files:    make(map[string]*MockFile),
		failures: make(map[string]error),
	}
	mfs.files[string(filepath.Separator)] = &MockFile{Mode: 0755 | fs.ModeDir, ModTime: time.Now(), IsDir: true}
	return mfs
}

// AddFile adds a file to the mock filesystem, creating parent directories
func (mfs *MockFileSystem) AddFile(path string, content []byte) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	mfs.addParents(cleanPath)
	mfs.put(cleanPath, &MockFile{
		Content: content,
		Mode:    0644,
		ModTime: time.Now(),
	})
}

// AddDir adds a directory to the mock filesystem, creating parent directories
func (mfs *MockFileSystem) AddDir(path string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	mfs.addParents(cleanPath)
	if _, exists := mfs.files[cleanPath]; !exists {
		mfs.put(cleanPath, &MockFile{Mode: 0755 | fs.ModeDir, ModTime: time.Now(), IsDir: true})
	}
}

// FailOn makes every mutating operation on path return err.
func (mfs *MockFileSystem) FailOn(path string, err error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.failures[filepath.Clean(path)] = err
}

func (mfs *MockFileSystem) addParents(cleanPath string) {
	dir := filepath.Dir(cleanPath)
	for dir != "." && dir != cleanPath {
		if _, exists := mfs.files[dir]; !exists {
			mfs.put(dir, &MockFile{Mode: 0755 | fs.ModeDir, ModTime: time.Now(), IsDir: true})
		}
		next := filepath.Dir(dir)
		if next == dir {
			break
		}
		dir = next
	}
}

func (mfs *MockFileSystem) put(cleanPath string, f *MockFile) {
	if _, exists := mfs.files[cleanPath]; !exists {
		mfs.order = append(mfs.order, cleanPath)
	}
	mfs.files[cleanPath] = f
}

// checkCreate validates that cleanPath can be created: not injected to
// fail, not taken, and inside an existing directory.
func (mfs *MockFileSystem) checkCreate(op, cleanPath string) error {
	if err, ok := mfs.failures[cleanPath]; ok {
		return &fs.PathError{Op: op, Path: cleanPath, Err: err}
	}
	if _, exists := mfs.files[cleanPath]; exists {
		return &fs.PathError{Op: op, Path: cleanPath, Err: fs.ErrExist}
	}
	parent, exists := mfs.files[filepath.Dir(cleanPath)]
	if !exists {
		return &fs.PathError{Op: op, Path: cleanPath, Err: fs.ErrNotExist}
	}
	if !parent.IsDir {
		return &fs.PathError{Op: op, Path: cleanPath, Err: errors.New("not a directory")}
	}
	return nil
}

func (mfs *MockFileSystem) ReadFile(path string) ([]byte, error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	file, exists := mfs.files[filepath.Clean(path)]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if file.IsDir {
		return nil, errors.New("is a directory")
	}
	return append([]byte(nil), file.Content...), nil
}

func (mfs *MockFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	if err := mfs.checkCreate("open", cleanPath); err != nil && !errors.Is(err, fs.ErrExist) {
		return err
	}
	if existing, ok := mfs.files[cleanPath]; ok && existing.IsDir {
		return &fs.PathError{Op: "open", Path: path, Err: errors.New("is a directory")}
	}

	mfs.put(cleanPath, &MockFile{
		Content: append([]byte(nil), data...),
		Mode:    perm,
		ModTime: time.Now(),
	})
	return nil
}

func (mfs *MockFileSystem) CreateFile(path string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	if err := mfs.checkCreate("open", cleanPath); err != nil {
		return err
	}

	mfs.put(cleanPath, &MockFile{
		Content: append([]byte(nil), data...),
		Mode:    perm,
		ModTime: time.Now(),
	})
	return nil
}

func (mfs *MockFileSystem) RemoveAll(path string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	if err, ok := mfs.failures[cleanPath]; ok {
		return &fs.PathError{Op: "remove", Path: path, Err: err}
	}

	prefix := cleanPath + string(filepath.Separator)
	kept := mfs.order[:0]
	for _, p := range mfs.order {
		if p == cleanPath || strings.HasPrefix(p, prefix) {
			delete(mfs.files, p)
			continue
		}
		kept = append(kept, p)
	}
	mfs.order = kept
	return nil
}

func (mfs *MockFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	file, exists := mfs.files[cleanPath]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if !file.IsDir {
		return nil, errors.New("not a directory")
	}

	var entries []fs.DirEntry
	for p, f := range mfs.files {
		if p != cleanPath && filepath.Dir(p) == cleanPath {
			entries = append(entries, &mockDirEntry{info: infoFor(p, f)})
		}
	}

	// Sort entries by name for consistent ordering
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	return entries, nil
}

func (mfs *MockFileSystem) Mkdir(path string, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	if err := mfs.checkCreate("mkdir", cleanPath); err != nil {
		return err
	}

	mfs.put(cleanPath, &MockFile{Mode: perm | fs.ModeDir, ModTime: time.Now(), IsDir: true})
	return nil
}

func (mfs *MockFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	if f, exists := mfs.files[cleanPath]; exists {
		if !f.IsDir {
			return &fs.PathError{Op: "mkdir", Path: path, Err: errors.New("not a directory")}
		}
		return nil
	}
	if err, ok := mfs.failures[cleanPath]; ok {
		return &fs.PathError{Op: "mkdir", Path: path, Err: err}
	}

	mfs.addParents(cleanPath)
	mfs.put(cleanPath, &MockFile{Mode: perm | fs.ModeDir, ModTime: time.Now(), IsDir: true})
	return nil
}

func (mfs *MockFileSystem) Stat(path string) (fs.FileInfo, error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	file, exists := mfs.files[cleanPath]
	if !exists {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return infoFor(cleanPath, file), nil
}

func (mfs *MockFileSystem) Exists(path string) bool {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	_, exists := mfs.files[filepath.Clean(path)]
	return exists
}

// WalkDir visits every entry below root in lexical order, like
// filepath.WalkDir (used by Tree)
func (mfs *MockFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	mfs.mu.Lock()
	cleanRoot := filepath.Clean(root)
	if _, exists := mfs.files[cleanRoot]; !exists {
		mfs.mu.Unlock()
		return fn(root, nil, &fs.PathError{Op: "lstat", Path: root, Err: fs.ErrNotExist})
	}

	// Collect all paths that are under root
	prefix := cleanRoot + string(filepath.Separator)
	if cleanRoot == string(filepath.Separator) {
		prefix = cleanRoot
	}
	var paths []string
	snapshot := make(map[string]*MockFile)
	for p, f := range mfs.files {
		if p == cleanRoot || strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
			snapshot[p] = f
		}
	}
	mfs.mu.Unlock()

	// Sort paths for consistent ordering
	sort.Strings(paths)

	var skipped []string
	for _, p := range paths {
		if isUnder(p, skipped) {
			continue
		}
		file := snapshot[p]
		entry := &mockDirEntry{info: infoFor(p, file)}

		if err := fn(p, entry, nil); err != nil {
			if errors.Is(err, filepath.SkipDir) {
				if file.IsDir {
					skipped = append(skipped, p)
				}
				continue
			}
			if errors.Is(err, filepath.SkipAll) {
				return nil
			}
			return err
		}
	}

	return nil
}

func (mfs *MockFileSystem) Glob(pattern string) ([]string, error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	var matches []string
	for p := range mfs.files {
		matched, err := filepath.Match(pattern, p)
		if err != nil {
			return nil, err
		}
		if matched {
			matches = append(matches, p)
		}
	}

	sort.Strings(matches)
	return matches, nil
}

// GetFiles returns a copy of every entry in the mock filesystem
func (mfs *MockFileSystem) GetFiles() map[string]*MockFile {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	out := make(map[string]*MockFile, len(mfs.files))
	for p, f := range mfs.files {
		out[p] = f
	}
	return out
}

// CreationOrder returns every path in the order it was first created
func (mfs *MockFileSystem) CreationOrder() []string {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	return append([]string(nil), mfs.order...)
}

// Tree renders every path below root, one per line, directories marked
// with a trailing slash (for assertions and debugging)
func (mfs *MockFileSystem) Tree(root string) string {
	var b strings.Builder
	_ = mfs.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, p)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			rel += "/"
		}
		fmt.Fprintln(&b, filepath.ToSlash(rel))
		return nil
	})
	return b.String()
}

func infoFor(p string, f *MockFile) *mockFileInfo {
	return &mockFileInfo{
		name:    filepath.Base(p),
		size:    int64(len(f.Content)),
		mode:    f.Mode,
		modTime: f.ModTime,
		isDir:   f.IsDir,
	}
}

func isUnder(p string, dirs []string) bool {
	for _, d := range dirs {
		if strings.HasPrefix(p, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
