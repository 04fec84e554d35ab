package palette

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSeedsDefaultsWhenEmpty(t *testing.T) {
	r := New(nil)
	require.NotEmpty(t, r.Names())
	require.Equal(t, "Activities", r.DefaultName())
	require.Equal(t, Defaults()["Food"], r.Contents("Food"))
}

func TestNewCopiesInput(t *testing.T) {
	in := map[string]string{"Mine": "🐶"}
	r := New(in)
	in["Mine"] = "🐱"
	require.Equal(t, "🐶", r.Contents("Mine"))
	require.Equal(t, []string{"Mine"}, r.Names())
}

func TestCyclicNavigation(t *testing.T) {
	r := New(map[string]string{"b": "2", "a": "1", "c": "3"})
	require.Equal(t, "a", r.DefaultName())
	require.Equal(t, "b", r.Next("a"))
	require.Equal(t, "a", r.Next("c"))
	require.Equal(t, "c", r.Previous("a"))
	require.Equal(t, "b", r.Previous("c"))

	// unknown names fall back to the default in both directions
	require.Equal(t, "a", r.Next("zzz"))
	require.Equal(t, "a", r.Previous("0"))
}

func TestNextUndoesPrevious(t *testing.T) {
	r := New(nil)
	for _, name := range r.Names() {
		require.Equal(t, name, r.Next(r.Previous(name)), "palette %q", name)
		require.Equal(t, name, r.Previous(r.Next(name)), "palette %q", name)
	}
}

func TestSinglePaletteWrapsToItself(t *testing.T) {
	r := New(map[string]string{"only": "🐶"})
	require.Equal(t, "only", r.Next("only"))
	require.Equal(t, "only", r.Previous("only"))
}

func TestContentsOfUnknownIsEmpty(t *testing.T) {
	require.Equal(t, "", New(nil).Contents("nope"))
}

func TestRename(t *testing.T) {
	r := New(map[string]string{"a": "🐶", "b": "🐱"})

	r.Rename("a", "z")
	require.False(t, r.Has("a"))
	require.Equal(t, "🐶", r.Contents("z"))

	// overwrite an existing palette
	r.Rename("z", "b")
	require.Equal(t, "🐶", r.Contents("b"))
	require.Equal(t, []string{"b"}, r.Names())

	// no-ops
	r.Rename("missing", "x")
	r.Rename("b", "b")
	r.Rename("b", "  ")
	require.Equal(t, []string{"b"}, r.Names())
}

func TestAddGlyphsAppendsOnlyNewOnes(t *testing.T) {
	r := New(map[string]string{"p": "🐶🐱"})
	name := r.AddGlyphs("🐱🐭🐭 🐹", "p")
	require.Equal(t, "p", name)
	require.Equal(t, "🐶🐱🐭🐹", r.Contents("p"))
}

func TestAddGlyphsCreatesPalette(t *testing.T) {
	r := New(map[string]string{"p": "🐶"})
	r.AddGlyphs("👨‍👩‍👧🇩🇪", "new")
	require.True(t, r.Has("new"))
	require.Equal(t, []string{"👨‍👩‍👧", "🇩🇪"}, Split(r.Contents("new")))
}

func TestAddGlyphsBlankTextCreatesNothing(t *testing.T) {
	r := New(map[string]string{"p": "🐶"})
	var calls atomic.Int32
	r.OnChange(func(map[string]string) { calls.Add(1) })
	for _, text := range []string{"", "   ", "\n\t"} {
		require.Equal(t, "blank", r.AddGlyphs(text, "blank"))
	}
	require.False(t, r.Has("blank"))
	require.Equal(t, []string{"p"}, r.Names())
	require.Equal(t, int32(0), calls.Load())
}

func TestRemoveGlyphKeepsAtLeastOne(t *testing.T) {
	r := New(map[string]string{"p": "🐶🐱🐶"})
	r.RemoveGlyph("🐶", "p")
	require.Equal(t, "🐱🐶", r.Contents("p"))
	r.RemoveGlyph("🐱", "p")
	require.Equal(t, "🐶", r.Contents("p"))
	for i := 0; i < 3; i++ {
		require.Equal(t, "p", r.RemoveGlyph("🐶", "p"))
	}
	require.Equal(t, "🐶", r.Contents("p"))
}

func TestRemoveGlyphUnknownIsNoOp(t *testing.T) {
	r := New(map[string]string{"p": "🐶🐱"})
	r.RemoveGlyph("🦀", "p")
	r.RemoveGlyph("🐶", "missing")
	require.Equal(t, "🐶🐱", r.Contents("p"))
	require.False(t, r.Has("missing"))
}

func TestOnChangeFiresOnlyOnMutation(t *testing.T) {
	r := New(map[string]string{"p": "🐶"})
	var calls atomic.Int32
	var last map[string]string
	r.OnChange(func(m map[string]string) {
		calls.Add(1)
		last = m
	})
	r.AddGlyphs("🐶", "p")   // nothing new
	r.RemoveGlyph("🐶", "p") // would empty the palette
	r.Rename("x", "y")
	require.Equal(t, int32(0), calls.Load())

	r.AddGlyphs("🐱", "p")
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, "🐶🐱", last["p"])
}

func TestSplitGraphemes(t *testing.T) {
	require.Equal(t, []string{"⚾️", "🧞‍♂️", "a"}, Split("⚾️ 🧞‍♂️\na"))
	require.Equal(t, 0, Count("   "))
}
