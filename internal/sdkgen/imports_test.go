package sdkgen

import (
	"cmp"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importFixture() *Resolver {
	foo := objectType("Foo", []string{"Shop"})
	bar := objectType("Bar", []string{"Shop"})
	colour := stringEnum("Colour", []string{"Shop", "Enums"}, "Red")
	paged := objectType("PagedOfColour", []string{"Common"})
	paged.Name = "Paged"
	paged.Generics = &GenericInfo{Arguments: []MortarType{ArrayOf(ref("Colour"))}}
	return newTestResolver(nil, foo, bar, colour, paged)
}

func TestImportTracker_Render(t *testing.T) {
	r := importFixture()
	it := newImportTracker()
	it.Track(ref("Foo"))
	it.Track(ArrayOf(ref("Bar")))
	it.Track(ref("Foo"))
	it.Track(ref("PagedOfColour"))
	it.Track(Int32)

	got, err := it.Render(r, "")
	require.NoError(t, err)
	assert.Equal(t, ""+
		"import { Paged } from \"mortar/Common\";\n"+
		"import { Bar, Foo } from \"mortar/Shop\";\n"+
		"import { Colour } from \"mortar/Shop/Enums\";\n", got)
}

func TestImportTracker_SkipsSelf(t *testing.T) {
	r := importFixture()
	it := newImportTracker()
	it.Track(ref("Foo"))
	it.Track(ref("Colour"))

	got, err := it.Render(r, "mortar/Shop")
	require.NoError(t, err)
	assert.Equal(t, "import { Colour } from \"mortar/Shop/Enums\";\n", got)
}

func TestImportTracker_Unresolved(t *testing.T) {
	it := newImportTracker()
	it.Track(ref("Missing"))

	_, err := it.Render(importFixture(), "")
	assert.ErrorIs(t, err, ErrUnresolvedReference)
}

func TestImportTracker_TrackAfterRenderPanics(t *testing.T) {
	it := newImportTracker()
	_, err := it.Render(importFixture(), "")
	require.NoError(t, err)

	assert.Panics(t, func() { it.Track(Str) })
}

func TestImportTracker_OrderIndependent(t *testing.T) {
	r := importFixture()
	pool := []MortarType{
		ref("Foo"), ref("Bar"), ref("Colour"), ref("PagedOfColour"),
		ArrayOf(ref("Foo")), Str, FileLike, ArrayOf(ArrayOf(ref("Bar"))),
	}

	reference := newImportTracker()
	for _, mt := range pool {
		reference.Track(mt)
	}
	want, err := reference.Render(r, "")
	require.NoError(t, err)

	properties := gopter.NewProperties(nil)
	properties.Property("permuting tracked types does not change the header", prop.ForAll(
		func(keys []int) bool {
			it := newImportTracker()
			for _, i := range permutation(keys) {
				it.Track(pool[i])
			}
			got, err := it.Render(r, "")
			return err == nil && got == want
		},
		gen.SliceOfN(len(pool), gen.Int()),
	))
	properties.TestingRun(t)
}

// permutation orders the indexes of keys by key value.
func permutation(keys []int) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return cmp.Compare(keys[a], keys[b]) })
	return idx
}
