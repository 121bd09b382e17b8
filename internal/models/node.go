package models

// Node is one entry of a configuration tree: a File or a Directory.
type Node interface {
	isNode()

	// NameRule returns the rule that names this entry
	NameRule() Rule
}

// File creates one regular file.
type File struct {
	// Name resolves to the file name (must be name-safe)
	Name Rule

	// Content resolves to the file bytes
	Content Rule
}

// Directory creates one directory and then its children, in order.
type Directory struct {
	// Name resolves to the directory name (must be name-safe)
	Name Rule

	// Children are materialized inside the directory in declared order
	Children []Node
}

func (File) isNode()      {}
func (Directory) isNode() {}

// NameRule returns the file's name rule
func (f File) NameRule() Rule { return f.Name }

// NameRule returns the directory's name rule
func (d Directory) NameRule() Rule { return d.Name }

// Node kinds as used in logs and reports.
const (
	KindFile      = "file"
	KindDirectory = "directory"
)

// NodeKind returns "file" or "directory", or "" for nil.
func NodeKind(node Node) string {
	switch node.(type) {
	case File, *File:
		return KindFile
	case Directory, *Directory:
		return KindDirectory
	default:
		return ""
	}
}

// NormalizeNode returns the value form of a node passed by pointer.
// A nil pointer yields nil.
func NormalizeNode(node Node) Node {
	switch n := node.(type) {
	case *File:
		if n == nil {
			return nil
		}
		return *n
	case *Directory:
		if n == nil {
			return nil
		}
		return *n
	default:
		return node
	}
}

// Count returns the number of files and directories in a tree, the root
// included.
func Count(node Node) (files, directories int) {
	switch n := NormalizeNode(node).(type) {
	case File:
		return 1, 0
	case Directory:
		directories = 1
		for _, child := range n.Children {
			f, d := Count(child)
			files += f
			directories += d
		}
	}
	return files, directories
}
