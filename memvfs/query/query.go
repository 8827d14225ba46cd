// Package query implements the read-only traversals over a tree: listing,
// recursive listing, name search and content search. Output order always
// follows child insertion order.
package query

import (
	"strings"

	internal "github.com/ZanzyTHEbar/memvfs/memvfs"
	"github.com/ZanzyTHEbar/memvfs/memvfs/trees"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"
)

const (
	blockStart = " START:"
	blockEnd   = "END"
)

// Match is one line hit from a recursive content search.
type Match struct {
	Path string
	Line string
}

func (m Match) String() string {
	return m.Path + ":" + m.Line
}

type Engine struct {
	resolver      trees.Resolver
	matcher       *Matcher
	workers       int
	globCacheSize int
	logger        zerolog.Logger
}

type Option func(*Engine)

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithGrepWorkers bounds the goroutines used by GrepRecursive.
func WithGrepWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithGlobCacheSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.globCacheSize = n
		}
	}
}

func NewEngine(resolver trees.Resolver, opts ...Option) (*Engine, error) {
	e := &Engine{
		resolver:      resolver,
		workers:       internal.DefaultGrepWorkers,
		globCacheSize: internal.DefaultGlobCacheSize,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	matcher, err := NewMatcher(e.globCacheSize, e.logger)
	if err != nil {
		return nil, err
	}
	e.matcher = matcher
	return e, nil
}

func (e *Engine) Matcher() *Matcher { return e.matcher }

// List returns the names of the directory's children.
func (e *Engine) List(path string) ([]string, error) {
	node, err := e.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}
	children, err := node.Children()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(children))
	for _, c := range children {
		names = append(names, c.Name())
	}
	return names, nil
}

// ListRecursive emits one block per directory in pre-order: "<name> START:",
// the child names, then "END". Files only show up as lines in their parent's
// block; listing a file directly yields nothing.
func (e *Engine) ListRecursive(path string) ([]string, error) {
	node, err := e.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}

	lines := []string{}
	listBlocks(node, &lines)
	return lines, nil
}

func listBlocks(node *trees.Node, lines *[]string) {
	children, err := node.Children()
	if err != nil {
		return
	}

	*lines = append(*lines, node.Name()+blockStart)
	for _, c := range children {
		*lines = append(*lines, c.Name())
	}
	*lines = append(*lines, blockEnd)

	for _, c := range children {
		listBlocks(c, lines)
	}
}

// Find walks every descendant of the directory at path in pre-order and
// returns the absolute paths of those whose name matches pattern. Matching
// directories are still descended into.
func (e *Engine) Find(path, pattern string) ([]string, error) {
	node, err := e.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}
	if !node.IsDirectory() {
		return nil, trees.ErrNotADirectory
	}

	g := e.matcher.Compile(pattern)
	found := []string{}
	walk(node, trees.Normalize(path), func(p string, n *trees.Node) {
		if g.Match(n.Name()) {
			found = append(found, p)
		}
	})

	e.logger.Debug().Str("path", path).Str("pattern", pattern).Int("matches", len(found)).Msg("find completed")
	return found, nil
}

// walk calls fn for each descendant of dir in pre-order with its absolute path.
func walk(dir *trees.Node, dirPath string, fn func(path string, n *trees.Node)) {
	children, err := dir.Children()
	if err != nil {
		return
	}
	for _, c := range children {
		p := trees.Join(dirPath, c.Name())
		fn(p, c)
		if c.IsDirectory() {
			walk(c, p, fn)
		}
	}
}

// Grep returns the lines of the file at path that match pattern as a whole.
// An empty file or no hits gives an empty result, not an error.
func (e *Engine) Grep(path, pattern string) ([]string, error) {
	node, err := e.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}
	content, err := node.Content()
	if err != nil {
		return nil, err
	}
	return grepLines(e.matcher.Compile(pattern).Match, content), nil
}

func grepLines(match func(string) bool, content string) []string {
	lines := []string{}
	if content == "" {
		return lines
	}
	for _, line := range strings.Split(content, "\n") {
		if match(line) {
			lines = append(lines, line)
		}
	}
	return lines
}

type fileRef struct {
	path string
	node *trees.Node
}

// GrepRecursive greps every file under path (or the file at path itself).
// Files are searched concurrently but results come back in pre-order file
// order, then line order. The tree must not be mutated while this runs.
func (e *Engine) GrepRecursive(path, pattern string) ([]Match, error) {
	node, err := e.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}

	var files []fileRef
	if node.IsDirectory() {
		walk(node, trees.Normalize(path), func(p string, n *trees.Node) {
			if !n.IsDirectory() {
				files = append(files, fileRef{path: p, node: n})
			}
		})
	} else {
		files = append(files, fileRef{path: trees.Normalize(path), node: node})
	}

	g := e.matcher.Compile(pattern)
	mapper := iter.Mapper[fileRef, []Match]{MaxGoroutines: e.workers}
	perFile := mapper.Map(files, func(f *fileRef) []Match {
		content, err := f.node.Content()
		if err != nil {
			return nil
		}
		lines := grepLines(g.Match, content)
		matches := make([]Match, 0, len(lines))
		for _, line := range lines {
			matches = append(matches, Match{Path: f.path, Line: line})
		}
		return matches
	})

	results := []Match{}
	for _, m := range perFile {
		results = append(results, m...)
	}

	e.logger.Debug().
		Str("path", path).
		Str("pattern", pattern).
		Int("files", len(files)).
		Int("matches", len(results)).
		Msg("recursive grep completed")
	return results, nil
}
