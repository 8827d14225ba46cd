package trees

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	internal "github.com/ZanzyTHEbar/memvfs/memvfs"
)

type NodeType int

const (
	Directory NodeType = iota
	File
)

func (t NodeType) String() string {
	switch t {
	case Directory:
		return "directory"
	case File:
		return "file"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// Node is either a directory or a file. Exactly one of dir and file is set,
// chosen by kind at construction and never changed afterwards.
type Node struct {
	name string
	kind NodeType
	dir  *dirPayload
	file *filePayload
}

type dirPayload struct {
	children []*Node
	byName   map[string]*Node
}

type filePayload struct {
	content string
}

// NameGrammar decides which strings are legal node names.
type NameGrammar struct {
	re *regexp.Regexp
}

// DefaultNameGrammar rejects empty names, slashes and whitespace.
var DefaultNameGrammar = MustCompileNameGrammar(internal.DefaultNamePattern)

// CompileNameGrammar builds a grammar from a regular expression. The whole
// pattern must match the whole name, alternations included.
func CompileNameGrammar(pattern string) (*NameGrammar, error) {
	body := strings.TrimPrefix(pattern, "^")
	if !strings.HasSuffix(body, `\$`) {
		body = strings.TrimSuffix(body, "$")
	}
	re, err := regexp.Compile("^(?:" + body + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid name pattern %q: %w", pattern, err)
	}
	return &NameGrammar{re: re}, nil
}

func MustCompileNameGrammar(pattern string) *NameGrammar {
	g, err := CompileNameGrammar(pattern)
	if err != nil {
		panic(err)
	}
	return g
}

// Check returns ErrInvalidName unless name is legal. "." and ".." are always
// rejected since the shell gives them navigation meaning, and so is anything
// containing a slash regardless of the configured pattern.
func (g *NameGrammar) Check(name string) error {
	if name == "" || name == "." || name == ".." || strings.Contains(name, "/") || !g.re.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// NewNode validates name and builds a detached node of the given kind.
func (g *NameGrammar) NewNode(name string, kind NodeType) (*Node, error) {
	if err := g.Check(name); err != nil {
		return nil, err
	}
	n := &Node{name: name, kind: kind}
	switch kind {
	case Directory:
		n.dir = &dirPayload{byName: make(map[string]*Node)}
	case File:
		n.file = &filePayload{}
	default:
		return nil, fmt.Errorf("unknown node type %d", int(kind))
	}
	return n, nil
}

// CheckName validates name against the default grammar.
func CheckName(name string) error {
	return DefaultNameGrammar.Check(name)
}

// NewNode builds a node using the default grammar.
func NewNode(name string, kind NodeType) (*Node, error) {
	return DefaultNameGrammar.NewNode(name, kind)
}

func newRoot() *Node {
	return &Node{kind: Directory, dir: &dirPayload{byName: make(map[string]*Node)}}
}

func (n *Node) Name() string { return n.name }

func (n *Node) Type() NodeType { return n.kind }

func (n *Node) IsDirectory() bool { return n.kind == Directory }

// Children returns a copy of the child list in insertion order.
func (n *Node) Children() ([]*Node, error) {
	if n.dir == nil {
		return nil, ErrNotADirectory
	}
	return slices.Clone(n.dir.children), nil
}

// ChildNamed looks up a direct child. ok is false when there is no such child.
func (n *Node) ChildNamed(name string) (child *Node, ok bool, err error) {
	if n.dir == nil {
		return nil, false, ErrNotADirectory
	}
	child, ok = n.dir.byName[name]
	return child, ok, nil
}

// AddChild appends child. The directory is left untouched on error.
func (n *Node) AddChild(child *Node) error {
	if n.dir == nil {
		return ErrNotADirectory
	}
	if child == nil || child.name == "" {
		return fmt.Errorf("%w: %q", ErrInvalidName, "")
	}
	if _, exists := n.dir.byName[child.name]; exists {
		return fmt.Errorf("%w: child with name %q already exists", ErrDuplicateName, child.name)
	}
	n.dir.children = append(n.dir.children, child)
	n.dir.byName[child.name] = child
	return nil
}

func (n *Node) Content() (string, error) {
	if n.file == nil {
		return "", ErrNotAFile
	}
	return n.file.content, nil
}

// SetContent replaces the whole content of a file.
func (n *Node) SetContent(content string) error {
	if n.file == nil {
		return ErrNotAFile
	}
	n.file.content = content
	return nil
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(%q)", n.kind, n.name)
}
