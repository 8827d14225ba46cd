package trees

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Tree owns the root directory and every node below it. It is not safe for
// concurrent mutation; callers serialize writes.
type Tree struct {
	id      uuid.UUID
	root    *Node
	names   *NameGrammar
	index   *PathIndex
	metrics *MetricsCollector
	logger  zerolog.Logger
}

// TreeOption allows for customization of Tree
type TreeOption func(*Tree)

// WithLogger sets a custom logger
func WithLogger(logger zerolog.Logger) TreeOption {
	return func(t *Tree) {
		t.logger = logger
	}
}

// WithNameGrammar replaces the default node name grammar
func WithNameGrammar(g *NameGrammar) TreeOption {
	return func(t *Tree) {
		if g != nil {
			t.names = g
		}
	}
}

func NewTree(opts ...TreeOption) *Tree {
	t := &Tree{
		id:      uuid.New(),
		root:    newRoot(),
		names:   DefaultNameGrammar,
		index:   NewPathIndex(),
		metrics: NewMetricsCollector(),
		logger:  zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With().Str("tree_id", t.id.String()).Logger()

	// the root is indexed like any other node so "/" hits the fast path
	_ = t.index.Insert(Separator, t.root)

	return t
}

func (t *Tree) ID() uuid.UUID { return t.id }

func (t *Tree) Root() *Node { return t.root }

// CheckName validates a name against this tree's grammar.
func (t *Tree) CheckName(name string) error {
	return t.names.Check(name)
}

// Resolve walks path from the root. "" and "/" name the root. A relative path
// never resolves: its first segment is reported as not found. Stepping through
// a file fails with ErrNotADirectory.
func (t *Tree) Resolve(path string) (*Node, error) {
	t.metrics.IncrementOperation(OpResolve)

	trimmed := strings.TrimRight(path, Separator)
	if trimmed == "" {
		return t.root, nil
	}

	if IsAbs(trimmed) {
		if node, ok := t.index.Lookup(trimmed); ok {
			t.metrics.IncrementOperation(OpIndexHit)
			return node, nil
		}
		t.metrics.IncrementOperation(OpIndexMiss)
		t.logger.Debug().Str("path", trimmed).Msg("path index miss, walking tree")
	}

	return t.walk(path, trimmed)
}

func (t *Tree) walk(path, trimmed string) (*Node, error) {
	parts := strings.Split(trimmed, Separator)
	if parts[0] != t.root.name {
		return nil, notFound(parts[0])
	}

	node := t.root
	for _, segment := range parts[1:] {
		if segment == "" {
			continue
		}
		child, ok, err := node.ChildNamed(segment)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}
		if !ok {
			return nil, notFound(segment)
		}
		node = child
	}
	return node, nil
}

// Insert creates a node of the given kind at path. The parent must already
// exist and be a directory. Like Resolve, a relative path fails with
// NotFound naming its first segment.
func (t *Tree) Insert(path string, kind NodeType) (*Node, error) {
	t.metrics.IncrementOperation(OpInsert)

	normalized := Normalize(path)
	if normalized == Separator {
		return nil, ErrRootCreationForbidden
	}
	if err := requireAbs(path); err != nil {
		return nil, err
	}

	parent, err := t.Resolve(Dirname(normalized))
	if err != nil {
		return nil, err
	}

	node, err := t.names.NewNode(Basename(normalized), kind)
	if err != nil {
		return nil, err
	}

	if err := parent.AddChild(node); err != nil {
		return nil, err
	}

	if err := t.index.Insert(normalized, node); err != nil {
		t.logger.Error().Err(err).Str("path", normalized).Msg("failed to insert node into path index")
	}

	t.logger.Debug().
		Str("path", normalized).
		Stringer("type", kind).
		Msg("node inserted")

	return node, nil
}

// MkdirAll creates path and any missing parent directories. Directories made
// before a failure are kept. It fails with ErrNotADirectory when a prefix is a
// file and with ErrDuplicateName when path itself already exists. Relative
// paths are rejected as in Insert.
func (t *Tree) MkdirAll(path string) (*Node, error) {
	t.metrics.IncrementOperation(OpMkdirAll)

	normalized := Normalize(path)
	if normalized == Separator {
		return nil, ErrRootCreationForbidden
	}
	if err := requireAbs(path); err != nil {
		return nil, err
	}

	if _, err := t.Resolve(normalized); err == nil {
		return nil, fmt.Errorf("%w: path exists %s", ErrDuplicateName, normalized)
	}

	current := Separator
	var node *Node
	for _, segment := range segments(normalized) {
		current = Join(current, segment)

		existing, err := t.Resolve(current)
		switch {
		case err == nil:
			if !existing.IsDirectory() {
				return nil, fmt.Errorf("%w: %s", ErrNotADirectory, current)
			}
			node = existing
		case errors.Is(err, ErrNodeNotFound):
			node, err = t.Insert(current, Directory)
			if err != nil {
				return nil, err
			}
			t.logger.Debug().Str("path", current).Msg("adding dir")
		default:
			return nil, err
		}
	}

	return node, nil
}

func requireAbs(path string) error {
	if IsAbs(path) {
		return nil
	}
	return notFound(segments(path)[0])
}

// Complete returns indexed absolute paths starting with prefix, lexically
// ordered. A relative prefix is taken from the root.
func (t *Tree) Complete(prefix string) []string {
	return t.index.PrefixLookup(prefix)
}

// Metrics returns a snapshot of the tree's shape and operation counters.
func (t *Tree) Metrics() *TreeMetrics {
	return t.metrics.Snapshot(t.root)
}

// ValidateIndex cross-checks the path index against the node graph.
func (t *Tree) ValidateIndex() []error {
	return t.index.Validate(t.root)
}
