package sdkgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEnum_DerivedType(t *testing.T) {
	var keys strings.Builder
	writeEnum(&keys, "Colour", []EnumElement{{Key: "A"}, {Key: "B"}})
	assert.Equal(t, ""+
		"export const Colour = {\n"+
		"  \"A\": \"A\",\n"+
		"  \"B\": \"B\",\n"+
		"} as const;\n"+
		"\n"+
		"export type Colour = keyof typeof Colour;\n", keys.String())

	one, two := "1", "2"
	var values strings.Builder
	writeEnum(&values, "Level", []EnumElement{{Key: "1", Raw: &one}, {Key: "2", Raw: &two}})
	assert.Equal(t, ""+
		"export const Level = {\n"+
		"  \"1\": 1,\n"+
		"  \"2\": 2,\n"+
		"} as const;\n"+
		"\n"+
		"export type Level = typeof Level[keyof typeof Level];\n", values.String())
}

// Scenario C: two instantiations of Paged produce a single declaration.
func TestGenerateTypeFile_GenericDeclaredOnce(t *testing.T) {
	foo := objectType("Foo", []string{"Shop"})
	bar := objectType("Bar", []string{"Shop"})
	pagedFoo := objectType("PagedOfFoo", []string{"Common"},
		Property{Name: "items", Type: ArrayOf(ref("Foo"))},
		Property{Name: "total", Type: Int32},
	)
	pagedFoo.Name = "Paged"
	pagedFoo.Generics = &GenericInfo{
		Arguments:  []MortarType{ref("Foo")},
		Properties: map[string]GenericParamInfo{"items": GenericNested{GenericPosition(0)}},
	}
	pagedBar := objectType("PagedOfBar", []string{"Common"},
		Property{Name: "items", Type: ArrayOf(ref("Bar"))},
		Property{Name: "total", Type: Int32},
	)
	pagedBar.Name = "Paged"
	pagedBar.Generics = &GenericInfo{
		Arguments:  []MortarType{ref("Bar")},
		Properties: map[string]GenericParamInfo{"items": GenericNested{GenericPosition(0)}},
	}
	r := newTestResolver(nil, foo, bar, pagedFoo, pagedBar)

	tf, err := generateTypeFile("mortar/Common", []*ConcreteType{pagedFoo, pagedBar}, r)
	require.NoError(t, err)

	assert.Equal(t, "mortar/Common", tf.Path)
	assert.Equal(t, 1, strings.Count(tf.Source, "export interface Paged<T0>"))
	assert.NotContains(t, tf.Source, "import", "generic properties import only terminal leaves")
	assert.Contains(t, tf.Source, "  items: T0[];\n  total: number;\n")
}

func TestGenerateTypeFile_SortsAndSkipsSelfImport(t *testing.T) {
	colour := stringEnum("Colour", []string{"Shop"}, "Red")
	widget := objectType("Widget", []string{"Shop"},
		Property{Name: "colour", Type: ref("Colour")},
		Property{Name: "owner", Type: ref("User")},
		Property{Name: "display name", Type: Str},
	)
	user := objectType("User", []string{"Accounts"})
	r := newTestResolver(nil, widget, colour, user)

	tf, err := generateTypeFile("mortar/Shop", []*ConcreteType{widget, colour}, r)
	require.NoError(t, err)

	assert.Equal(t, ""+
		"// Auto Generated file, do not modify\n"+
		"import { User } from \"mortar/Accounts\";\n"+
		"\n"+
		"export const Colour = {\n"+
		"  \"Red\": \"Red\",\n"+
		"} as const;\n"+
		"\n"+
		"export type Colour = keyof typeof Colour;\n"+
		"\n"+
		"export interface Widget {\n"+
		"  colour: Colour;\n"+
		"  owner: User;\n"+
		"  \"display name\": string;\n"+
		"}\n", tf.Source)
}

func TestGenerateTypeFile_PropertyOrder(t *testing.T) {
	names := []string{"zulu", "alpha", "mike", "bravo"}
	var props []Property
	for _, n := range names {
		props = append(props, Property{Name: n, Type: Str})
	}
	c := objectType("T", []string{"X"}, props...)

	tf, err := generateTypeFile("mortar/X", []*ConcreteType{c}, newTestResolver(nil, c))
	require.NoError(t, err)

	last := -1
	for _, n := range names {
		i := strings.Index(tf.Source, "  "+n+": string;")
		require.NotEqual(t, -1, i, n)
		assert.Equal(t, 1, strings.Count(tf.Source, "  "+n+": "), n)
		assert.Greater(t, i, last, n)
		last = i
	}
}

func TestGroupByNamespace(t *testing.T) {
	a := objectType("A", []string{"X", "Y"})
	b := objectType("B", []string{"X"})
	c := objectType("C", []string{"X", "Y"})

	groups := groupByNamespace([]*ConcreteType{a, b, c})
	assert.Equal(t, []*ConcreteType{a, c}, groups["mortar/X/Y"])
	assert.Equal(t, []*ConcreteType{b}, groups["mortar/X"])
}
