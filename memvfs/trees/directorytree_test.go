package trees

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleTree builds /d1 with d2, d3 and f1 inside it.
func sampleTree(t *testing.T) *Tree {
	t.Helper()
	tree := NewTree()
	for _, p := range []string{"/d1", "/d1/d2", "/d1/d3"} {
		_, err := tree.Insert(p, Directory)
		require.NoError(t, err)
	}
	_, err := tree.Insert("/d1/f1", File)
	require.NoError(t, err)
	return tree
}

func TestTree_Resolve(t *testing.T) {
	t.Run("root resolves from empty and slash", func(t *testing.T) {
		tree := NewTree()
		for _, p := range []string{"", "/", "///"} {
			n, err := tree.Resolve(p)
			require.NoError(t, err, "path %q", p)
			assert.Same(t, tree.Root(), n)
			assert.Equal(t, "", n.Name())
		}
	})

	t.Run("inserted nodes resolve by exact path", func(t *testing.T) {
		tree := sampleTree(t)

		n, err := tree.Resolve("/d1")
		require.NoError(t, err)
		assert.Equal(t, "d1", n.Name())

		n, err = tree.Resolve("/d1/d2/")
		require.NoError(t, err)
		assert.Equal(t, "d2", n.Name())
	})

	t.Run("missing segment is named in the error", func(t *testing.T) {
		tree := sampleTree(t)

		_, err := tree.Resolve("/d1/nope/deeper")
		require.ErrorIs(t, err, ErrNodeNotFound)
		var nf *NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "nope", nf.Segment)
		assert.EqualError(t, err, "not found child node nope")
	})

	t.Run("relative paths do not resolve", func(t *testing.T) {
		tree := sampleTree(t)

		_, err := tree.Resolve("d1")
		var nf *NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "d1", nf.Segment)
	})

	t.Run("walking through a file is NotADirectory", func(t *testing.T) {
		tree := sampleTree(t)

		_, err := tree.Resolve("/d1/f1/x")
		assert.ErrorIs(t, err, ErrNotADirectory)
	})

	t.Run("redundant separators are collapsed", func(t *testing.T) {
		tree := sampleTree(t)

		n, err := tree.Resolve("//d1///d3")
		require.NoError(t, err)
		assert.Equal(t, "d3", n.Name())
	})
}

func TestTree_Insert(t *testing.T) {
	t.Run("insert then resolve returns the same node", func(t *testing.T) {
		tree := NewTree()
		inserted, err := tree.Insert("/docs", Directory)
		require.NoError(t, err)

		found, err := tree.Resolve("/docs")
		require.NoError(t, err)
		assert.Same(t, inserted, found)
	})

	t.Run("duplicate leaves the tree unchanged", func(t *testing.T) {
		tree := sampleTree(t)
		original, err := tree.Resolve("/d1/f1")
		require.NoError(t, err)
		require.NoError(t, original.SetContent("keep me"))

		_, err = tree.Insert("/d1/f1", Directory)
		assert.ErrorIs(t, err, ErrDuplicateName)

		again, err := tree.Resolve("/d1/f1")
		require.NoError(t, err)
		assert.Same(t, original, again)
		content, _ := again.Content()
		assert.Equal(t, "keep me", content)

		d1, _ := tree.Resolve("/d1")
		children, _ := d1.Children()
		assert.Len(t, children, 3)
	})

	t.Run("missing parent is NodeNotFound", func(t *testing.T) {
		tree := NewTree()
		_, err := tree.Insert("/NOT_EXISTS/some.file", File)
		assert.ErrorIs(t, err, ErrNodeNotFound)
		assert.EqualError(t, err, "not found child node NOT_EXISTS")
	})

	t.Run("relative path is rejected like Resolve does", func(t *testing.T) {
		tree := NewTree()
		_, err := tree.Insert("a", Directory)
		assert.EqualError(t, err, "not found child node a")

		_, err = tree.Resolve("a")
		assert.EqualError(t, err, "not found child node a")

		children, _ := tree.Root().Children()
		assert.Empty(t, children)
	})

	t.Run("parent that is a file is NotADirectory", func(t *testing.T) {
		tree := sampleTree(t)
		_, err := tree.Insert("/d1/f1/child", File)
		assert.ErrorIs(t, err, ErrNotADirectory)
	})

	t.Run("root cannot be created", func(t *testing.T) {
		tree := NewTree()
		for _, p := range []string{"/", "", "//"} {
			_, err := tree.Insert(p, Directory)
			assert.ErrorIs(t, err, ErrRootCreationForbidden, "path %q", p)
		}
	})

	t.Run("illegal names are rejected", func(t *testing.T) {
		tree := NewTree()
		_, err := tree.Insert("/bad name", File)
		assert.ErrorIs(t, err, ErrInvalidName)
		_, err = tree.Insert("/..", Directory)
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("custom grammar is honoured", func(t *testing.T) {
		tree := NewTree(WithNameGrammar(MustCompileNameGrammar("[a-z]+")))
		_, err := tree.Insert("/abc", Directory)
		require.NoError(t, err)
		_, err = tree.Insert("/ABC", Directory)
		assert.ErrorIs(t, err, ErrInvalidName)
		assert.ErrorIs(t, tree.CheckName("x1"), ErrInvalidName)
	})

	t.Run("content set on a resolved file is visible later", func(t *testing.T) {
		tree := sampleTree(t)
		_, err := tree.Insert("/d1/d2/f1.txt", File)
		require.NoError(t, err)

		n, err := tree.Resolve("/d1/d2/f1.txt")
		require.NoError(t, err)
		require.NoError(t, n.SetContent("123"))

		n, err = tree.Resolve("/d1/d2/f1.txt")
		require.NoError(t, err)
		content, err := n.Content()
		require.NoError(t, err)
		assert.Equal(t, "123", content)
	})
}

func TestTree_MkdirAll(t *testing.T) {
	t.Run("creates every missing directory", func(t *testing.T) {
		tree := NewTree()
		before := tree.Metrics().Directories

		leaf, err := tree.MkdirAll("/a/b/c")
		require.NoError(t, err)
		assert.Equal(t, "c", leaf.Name())
		assert.Equal(t, before+3, tree.Metrics().Directories, "exactly three directories are created")

		for _, p := range []string{"/a", "/a/b", "/a/b/c"} {
			n, err := tree.Resolve(p)
			require.NoError(t, err, "path %q", p)
			assert.True(t, n.IsDirectory())
		}
	})

	t.Run("reuses existing prefixes", func(t *testing.T) {
		tree := NewTree()
		_, err := tree.MkdirAll("/rec1/rec2/rec3")
		require.NoError(t, err)
		_, err = tree.MkdirAll("/rec1/rec2/rec3/rec4")
		require.NoError(t, err)

		rec3, err := tree.Resolve("/rec1/rec2/rec3")
		require.NoError(t, err)
		children, _ := rec3.Children()
		require.Len(t, children, 1)
		assert.Equal(t, "rec4", children[0].Name())
	})

	t.Run("existing target is DuplicateName", func(t *testing.T) {
		tree := sampleTree(t)
		_, err := tree.MkdirAll("/d1/d2")
		assert.ErrorIs(t, err, ErrDuplicateName)
		_, err = tree.MkdirAll("/d1/f1")
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("file prefix is NotADirectory and earlier progress stays", func(t *testing.T) {
		tree := NewTree()
		_, err := tree.MkdirAll("/x/y")
		require.NoError(t, err)
		_, err = tree.Insert("/x/y/file", File)
		require.NoError(t, err)

		_, err = tree.MkdirAll("/x/y/file/z")
		assert.ErrorIs(t, err, ErrNotADirectory)

		for _, p := range []string{"/x", "/x/y", "/x/y/file"} {
			_, err := tree.Resolve(p)
			assert.NoError(t, err, "path %q", p)
		}
		_, err = tree.Resolve("/x/y/file/z")
		assert.Error(t, err)
	})

	t.Run("partial creation before an invalid name is kept", func(t *testing.T) {
		tree := NewTree()
		_, err := tree.MkdirAll("/p/q/bad name/r")
		assert.ErrorIs(t, err, ErrInvalidName)

		for _, p := range []string{"/p", "/p/q"} {
			n, err := tree.Resolve(p)
			require.NoError(t, err, "directory %q created before the failure must remain", p)
			assert.True(t, n.IsDirectory())
		}
	})

	t.Run("root is forbidden", func(t *testing.T) {
		tree := NewTree()
		_, err := tree.MkdirAll("/")
		assert.ErrorIs(t, err, ErrRootCreationForbidden)
	})

	t.Run("relative path is rejected", func(t *testing.T) {
		tree := NewTree()
		_, err := tree.MkdirAll("x/y")
		assert.ErrorIs(t, err, ErrNodeNotFound)
		assert.EqualError(t, err, "not found child node x")

		children, _ := tree.Root().Children()
		assert.Empty(t, children, "nothing is created")
	})
}

func TestTree_Complete(t *testing.T) {
	tree := sampleTree(t)
	_, err := tree.MkdirAll("/d10/x")
	require.NoError(t, err)

	assert.Equal(t, []string{"/d1/d2", "/d1/d3"}, tree.Complete("/d1/d"))
	assert.Equal(t, []string{"/d1", "/d1/d2", "/d1/d3", "/d1/f1", "/d10", "/d10/x"}, tree.Complete("/d1"))
	assert.Equal(t, []string{"/d10/x"}, tree.Complete("d10/"))
	assert.Empty(t, tree.Complete("/zzz"))
}

func TestTree_MetricsAndIndex(t *testing.T) {
	tree := sampleTree(t)
	_, _ = tree.Resolve("/d1/d2")
	_, _ = tree.Resolve("/missing")

	m := tree.Metrics()
	assert.Equal(t, int64(5), m.TotalNodes, "root, d1, d2, d3, f1")
	assert.Equal(t, int64(4), m.Directories)
	assert.Equal(t, int64(1), m.Files)
	assert.Equal(t, 2, m.MaxDepth)
	assert.Equal(t, int64(4), m.OperationCounts[OpInsert])
	assert.GreaterOrEqual(t, m.OperationCounts[OpIndexHit], int64(1))
	assert.GreaterOrEqual(t, m.OperationCounts[OpIndexMiss], int64(1))

	m.OperationCounts[OpInsert] = 1000
	assert.Equal(t, int64(4), tree.Metrics().OperationCounts[OpInsert], "snapshots are copies")

	assert.Empty(t, tree.ValidateIndex())
}

func TestTree_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	tree := NewTree(WithLogger(logger))

	_, err := tree.MkdirAll("/a/b")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"node inserted"`)
	assert.Contains(t, out, `"path":"/a/b"`)
	assert.Contains(t, out, tree.ID().String(), "events carry the tree id")
}
