package trees

import (
	"maps"
	"sync"
	"time"
)

// Operation names counted by MetricsCollector.
const (
	OpResolve   = "resolve"
	OpInsert    = "insert"
	OpMkdirAll  = "mkdirall"
	OpIndexHit  = "index_hit"
	OpIndexMiss = "index_miss"
)

// TreeMetrics holds statistical information about the tree
type TreeMetrics struct {
	TotalNodes      int64
	Directories     int64
	Files           int64
	MaxDepth        int
	LastUpdated     time.Time
	OperationCounts map[string]int64
}

// MetricsCollector counts tree operations. Structural figures are computed on
// demand by walking the tree.
type MetricsCollector struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{counts: make(map[string]int64)}
}

// IncrementOperation safely increments an operation count
func (mc *MetricsCollector) IncrementOperation(op string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.counts[op]++
}

// Snapshot computes structural metrics for the tree rooted at root and
// attaches a copy of the operation counters.
func (mc *MetricsCollector) Snapshot(root *Node) *TreeMetrics {
	m := &TreeMetrics{LastUpdated: time.Now()}
	computeTreeMetrics(root, 0, m)

	mc.mu.Lock()
	m.OperationCounts = maps.Clone(mc.counts)
	mc.mu.Unlock()
	return m
}

// computeTreeMetrics recursively computes metrics starting from node. The root
// counts as a node at depth 0.
func computeTreeMetrics(node *Node, depth int, metrics *TreeMetrics) {
	if node == nil {
		return
	}

	metrics.TotalNodes++
	metrics.MaxDepth = max(metrics.MaxDepth, depth)

	children, err := node.Children()
	if err != nil {
		metrics.Files++
		return
	}
	metrics.Directories++
	for _, child := range children {
		computeTreeMetrics(child, depth+1, metrics)
	}
}
