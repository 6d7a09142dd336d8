package sdkgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genericFixture() *Resolver {
	foo := objectType("Foo", []string{"Shop"})
	pair := objectType("PairOfInt32AndFoo", []string{"Common"})
	pair.Name = "Pair"
	pair.Generics = &GenericInfo{Arguments: []MortarType{Int32, ref("Foo")}}
	box := objectType("BoxOfPairOfInt32AndFoo", []string{"Common"})
	box.Name = "Box"
	box.Generics = &GenericInfo{Arguments: []MortarType{ref("PairOfInt32AndFoo")}}
	return newTestResolver(nil, foo, pair, box)
}

func TestRenderGenericTree(t *testing.T) {
	tests := []struct {
		name    string
		info    GenericParamInfo
		paired  MortarType
		want    string
		imports string
	}{
		{
			name:   "position",
			info:   GenericPosition(2),
			paired: Any,
			want:   "T2",
		},
		{
			name:    "terminal",
			info:    GenericTerminal{Type: ref("Foo")},
			paired:  ref("Foo"),
			want:    "Foo",
			imports: "import { Foo } from \"mortar/Shop\";\n",
		},
		{
			name:   "nested reference",
			info:   GenericNested{GenericPosition(0), GenericPosition(1)},
			paired: ref("PairOfInt32AndFoo"),
			want:   "Pair<T0, T1>",
		},
		{
			name:    "nested reference with terminal",
			info:    GenericNested{GenericTerminal{Type: Str}, GenericTerminal{Type: ref("Foo")}},
			paired:  ref("PairOfInt32AndFoo"),
			want:    "Pair<string, Foo>",
			imports: "import { Foo } from \"mortar/Shop\";\n",
		},
		{
			name:   "deeply nested",
			info:   GenericNested{GenericNested{GenericPosition(1), GenericPosition(0)}},
			paired: ref("BoxOfPairOfInt32AndFoo"),
			want:   "Box<Pair<T1, T0>>",
		},
		{
			name:   "nested non-generic reference",
			info:   GenericNested{GenericPosition(0)},
			paired: ref("Foo"),
			want:   "Foo",
		},
		{
			name:   "array of position",
			info:   GenericNested{GenericPosition(0)},
			paired: ArrayOf(ref("Foo")),
			want:   "T0[]",
		},
		{
			name:    "array of terminal",
			info:    GenericNested{GenericTerminal{Type: ref("Foo")}},
			paired:  ArrayOf(Any),
			want:    "Foo[]",
			imports: "import { Foo } from \"mortar/Shop\";\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := genericFixture()
			it := newImportTracker()
			got, err := renderGenericTree(tt.info, tt.paired, r, it)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			imports, err := it.Render(r, "")
			require.NoError(t, err)
			assert.Equal(t, tt.imports, imports)
		})
	}
}

func TestRenderGenericTree_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name   string
		info   GenericParamInfo
		paired MortarType
		err    error
	}{
		{"array with two entries", GenericNested{GenericPosition(0), GenericPosition(1)}, ArrayOf(Str), ErrGenericShapeMismatch},
		{"array with nested entry", GenericNested{GenericNested{GenericPosition(0)}}, ArrayOf(Str), ErrGenericShapeMismatch},
		{"primitive", GenericNested{GenericPosition(0)}, Str, ErrGenericShapeMismatch},
		{"argument count", GenericNested{GenericPosition(0)}, ref("PairOfInt32AndFoo"), ErrGenericShapeMismatch},
		{"unresolved", GenericNested{GenericPosition(0)}, ref("Missing"), ErrUnresolvedReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := renderGenericTree(tt.info, tt.paired, genericFixture(), newImportTracker())
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
