package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tree(t *testing.T, src string) Node {
	t.Helper()
	n, err := ParseTree([]byte(src))
	require.NoError(t, err)
	return n
}

func TestMerge_Precedence(t *testing.T) {
	def := tree(t, "a = 1\n[b]\nc = 1\n")
	user := tree(t, "[b]\nc = 2\n")
	project := tree(t, "[b]\nd = 3\n")

	got := Merge(Merge(def, user), project)

	want := tree(t, "a = 1\n[b]\nc = 2\nd = 3\n")
	assert.True(t, want.Equal(got), "got %s", got)
}

func TestMerge_SequenceReplaces(t *testing.T) {
	got := Merge(tree(t, "arr = [1, 2]"), tree(t, "arr = [3]"))

	arr, ok := got.Get("arr")
	require.True(t, ok)
	require.Len(t, arr.Items(), 1)
	assert.Equal(t, int64(3), arr.Items()[0].Value())
}

func TestMerge_NullIsNoOp(t *testing.T) {
	target := tree(t, "keep = \"yes\"\n[nested]\nx = 1\n")

	source := FromValue(map[string]any{
		"keep":   nil,
		"nested": map[string]any{"x": nil},
		"fresh":  nil,
	})
	got := Merge(target, source)

	assert.True(t, target.Equal(got), "got %s", got)
	_, ok := got.Get("fresh")
	assert.False(t, ok, "null must not introduce keys")

	assert.True(t, target.Equal(Merge(target, Null())))
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	target := tree(t, "[b]\nc = 1\n")
	source := tree(t, "[b]\nd = 2\n")

	got := Merge(target, source)
	_, ok := got.Lookup("b", "d")
	require.True(t, ok)

	_, hasD := target.Lookup("b", "d")
	assert.False(t, hasD, "target modified by merge")
	_, hasC := source.Lookup("b", "c")
	assert.False(t, hasC, "source modified by merge")
}

func TestMerge_MappingOverScalar(t *testing.T) {
	got := Merge(tree(t, "a = 1"), tree(t, "[a]\nb = 2\n"))
	b, ok := got.Lookup("a", "b")
	require.True(t, ok)
	assert.Equal(t, int64(2), b.Value())
}

func TestMerge_ScalarOverMapping(t *testing.T) {
	got := Merge(tree(t, "[a]\nb = 2\n"), tree(t, "a = \"flat\""))
	a, ok := got.Get("a")
	require.True(t, ok)
	assert.Equal(t, "flat", a.Value())
}

func TestDiffKeys(t *testing.T) {
	before := tree(t, "a = 1\n[b]\nc = 1\n")
	after := Merge(before, tree(t, "z = true\n[b]\nc = 2\nd = 3\n"))

	added, updated := diffKeys(before, after)
	assert.Equal(t, []string{"b.d", "z"}, added)
	assert.Equal(t, []string{"b.c"}, updated)
}

func TestFromValue_NormalizesInts(t *testing.T) {
	a := FromValue(map[string]any{"n": 3, "f": float32(1.5)})
	b := tree(t, "n = 3\nf = 1.5\n")
	assert.True(t, a.Equal(b))
}

func TestNodeString(t *testing.T) {
	assert.Equal(t, "null", Null().String())
	assert.Equal(t, `"x"`, Scalar("x").String())
	assert.Equal(t, "42", Scalar(42).String())
	assert.Equal(t, "[1, 2]", FromValue([]any{1, 2}).String())
}
