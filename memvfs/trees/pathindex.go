package trees

import (
	"fmt"
	"sync"

	"github.com/armon/go-radix"
)

// PathIndexStats tracks performance metrics for the path index
type PathIndexStats struct {
	TotalNodes    int64
	PathLookups   int64
	PrefixLookups int64
	Insertions    int64
	Misses        int64
}

// PathIndex maps normalized absolute paths to nodes in a patricia tree, so an
// exact lookup costs O(k) in the path length rather than a walk from the root.
// The tree itself stays the source of truth; the index is only a shortcut.
type PathIndex struct {
	tree  *radix.Tree
	mu    sync.RWMutex
	stats PathIndexStats
}

func NewPathIndex() *PathIndex {
	return &PathIndex{tree: radix.New()}
}

// Insert records node under path. Re-inserting the same path replaces the entry.
func (idx *PathIndex) Insert(path string, node *Node) error {
	if node == nil {
		return fmt.Errorf("invalid input: node cannot be nil")
	}
	key := Normalize(path)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, updated := idx.tree.Insert(key, node); !updated {
		idx.stats.TotalNodes++
	}
	idx.stats.Insertions++
	return nil
}

// Lookup finds the node stored for the exact normalized path.
func (idx *PathIndex) Lookup(path string) (*Node, bool) {
	key := Normalize(path)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.stats.PathLookups++
	value, found := idx.tree.Get(key)
	if !found {
		idx.stats.Misses++
		return nil, false
	}
	return value.(*Node), true
}

// PrefixLookup returns every indexed path starting with prefix, in lexical
// order. The prefix is matched as a raw string so "/d" finds "/d1" and "/d2".
func (idx *PathIndex) PrefixLookup(prefix string) []string {
	key := prefix
	if !IsAbs(key) {
		key = Separator + key
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	var results []string
	idx.tree.WalkPrefix(key, func(k string, _ interface{}) bool {
		results = append(results, k)
		return false
	})
	idx.stats.PrefixLookups++
	return results
}

// Size returns the total number of nodes in the path index
func (idx *PathIndex) Size() int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.stats.TotalNodes
}

// Stats returns a copy of the current statistics
func (idx *PathIndex) Stats() PathIndexStats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.stats
}

// Validate checks the index against the tree rooted at root: every reachable
// node must be indexed under its path and nothing else may be indexed.
func (idx *PathIndex) Validate(root *Node) []error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var errs []error
	seen := 0
	var visit func(path string, n *Node)
	visit = func(path string, n *Node) {
		seen++
		v, ok := idx.tree.Get(path)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("index_missing: %s", path))
		case v.(*Node) != n:
			errs = append(errs, fmt.Errorf("index_stale: %s points at a different node", path))
		}
		children, err := n.Children()
		if err != nil {
			return
		}
		for _, c := range children {
			visit(Join(path, c.Name()), c)
		}
	}
	visit(Separator, root)

	if idx.tree.Len() != seen {
		errs = append(errs, fmt.Errorf("count_mismatch: index holds %d paths, tree has %d nodes", idx.tree.Len(), seen))
	}
	return errs
}
