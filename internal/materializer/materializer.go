// Package materializer realizes configuration trees on a filesystem.
//
// The walk is depth-first and pre-order: a directory exists before any of
// its children is created. Entries are never overwritten, and a failing
// node aborts the rest of its subtree without rolling back what was
// already created.
package materializer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/jakoblorz/go-treegen/internal/filesystem"
	"github.com/jakoblorz/go-treegen/internal/generator"
	"github.com/jakoblorz/go-treegen/internal/models"
	"golang.org/x/sync/errgroup"
)

// Materializer creates files and directories from configuration nodes
type Materializer struct {
	fs          filesystem.FileSystem
	gen         *generator.Generator
	logger      *slog.Logger
	parallelism int
	fileMode    fs.FileMode
	dirMode     fs.FileMode
}

// Option configures a Materializer
type Option func(*Materializer)

// WithLogger sets the logger used for per-entry debug logs
func WithLogger(logger *slog.Logger) Option {
	return func(m *Materializer) {
		m.logger = logger
	}
}

// WithGenerator sets the rule generator
func WithGenerator(gen *generator.Generator) Option {
	return func(m *Materializer) {
		m.gen = gen
	}
}

// WithParallelism sets how many siblings may be materialized at once.
// Values below 2 keep the walk strictly sequential.
func WithParallelism(n int) Option {
	return func(m *Materializer) {
		m.parallelism = n
	}
}

// WithFileMode sets the permission bits of created files
func WithFileMode(mode fs.FileMode) Option {
	return func(m *Materializer) {
		m.fileMode = mode
	}
}

// WithDirMode sets the permission bits of created directories
func WithDirMode(mode fs.FileMode) Option {
	return func(m *Materializer) {
		m.dirMode = mode
	}
}

// New creates a Materializer writing to fsys
func New(fsys filesystem.FileSystem, opts ...Option) *Materializer {
	m := &Materializer{
		fs:          fsys,
		gen:         generator.New(),
		logger:      slog.New(slog.DiscardHandler),
		parallelism: 1,
		fileMode:    0644,
		dirMode:     0755,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Materialize creates node inside dir. The returned report lists every
// entry created, also when an error is returned.
func (m *Materializer) Materialize(node models.Node, dir string) (*Report, error) {
	report := &Report{}

	name, err := m.resolveName(node, dir)
	if err != nil {
		return report, err
	}
	return report, m.create(context.Background(), models.NormalizeNode(node), dir, name, report)
}

func (m *Materializer) resolveName(node models.Node, dir string) (string, error) {
	node = models.NormalizeNode(node)
	if node == nil {
		return "", fmt.Errorf("%w: node in %s is missing", models.ErrInvalidRule, dir)
	}

	name, err := m.gen.Name(node.NameRule())
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s name in %s: %w", models.NodeKind(node), dir, err)
	}
	return name, nil
}

// create realizes a node whose name is already resolved.
func (m *Materializer) create(ctx context.Context, node models.Node, dir, name string, report *Report) error {
	target := filepath.Join(dir, name)

	switch n := node.(type) {
	case models.File:
		content, err := m.gen.Content(n.Content)
		if err != nil {
			return fmt.Errorf("failed to generate content for %s: %w", target, err)
		}
		if err := m.fs.CreateFile(target, content, m.fileMode); err != nil {
			return classify("create file", target, err)
		}
		report.add(Entry{Path: target, Kind: models.KindFile, Size: int64(len(content))})
		m.logger.Debug("Created file.", "path", target, "bytes", len(content), "rule", models.RuleKind(n.Content))
		return nil

	case models.Directory:
		if err := m.fs.Mkdir(target, m.dirMode); err != nil {
			return classify("create directory", target, err)
		}
		report.add(Entry{Path: target, Kind: models.KindDirectory})
		m.logger.Debug("Created directory.", "path", target, "children", len(n.Children))

		if m.parallelism > 1 && len(n.Children) > 1 {
			return m.childrenParallel(ctx, n.Children, target, report)
		}
		return m.children(ctx, n.Children, target, report)

	default:
		return fmt.Errorf("%w: unknown node type %T", models.ErrInvalidRule, node)
	}
}

// children materializes siblings one after another in declared order.
func (m *Materializer) children(ctx context.Context, nodes []models.Node, dir string, report *Report) error {
	seen := make(map[string]struct{}, len(nodes))
	for _, child := range nodes {
		name, err := m.resolveName(child, dir)
		if err != nil {
			return err
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %q in %s", models.ErrDuplicateName, name, dir)
		}
		seen[name] = struct{}{}

		if err := m.create(ctx, models.NormalizeNode(child), dir, name, report); err != nil {
			return err
		}
	}
	return nil
}

// childrenParallel resolves and checks every sibling name up front, in
// declared order, then fans the subtrees out. The parent directory
// already exists at this point.
func (m *Materializer) childrenParallel(ctx context.Context, nodes []models.Node, dir string, report *Report) error {
	names := make([]string, len(nodes))
	seen := make(map[string]struct{}, len(nodes))
	for i, child := range nodes {
		name, err := m.resolveName(child, dir)
		if err != nil {
			return err
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %q in %s", models.ErrDuplicateName, name, dir)
		}
		seen[name] = struct{}{}
		names[i] = name
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.parallelism)
	for i, child := range nodes {
		child, name := models.NormalizeNode(child), names[i]
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			return m.create(gctx, child, dir, name, report)
		})
	}
	return g.Wait()
}

func classify(op, path string, err error) error {
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s: %w", models.ErrAlreadyExists, path, err)
	}
	return fmt.Errorf("%w: failed to %s %s: %w", models.ErrIO, op, path, err)
}
