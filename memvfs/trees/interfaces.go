package trees

// Resolver turns a path into a node. The query engine and the shell depend on
// this rather than on *Tree so they can be exercised against any namespace.
type Resolver interface {
	Resolve(path string) (*Node, error)
}

// Namespace is the mutable side of the tree as seen by the command layer.
type Namespace interface {
	Resolver
	Insert(path string, kind NodeType) (*Node, error)
	MkdirAll(path string) (*Node, error)
	Complete(prefix string) []string
}

var _ Namespace = (*Tree)(nil)
