package sdkgen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LukeThoma5/mortar/internal/diagnostic"
	"github.com/LukeThoma5/mortar/internal/openapi"
)

func mustDecode(t *testing.T, src string) *openapi.Document {
	t.Helper()
	doc, err := openapi.Decode([]byte(src))
	require.NoError(t, err)
	return doc
}

func mustParse(t *testing.T, src string) *Model {
	t.Helper()
	model, err := Parse(mustDecode(t, src), diagnostic.NewCollector(false, false))
	require.NoError(t, err)
	return model
}

// schemaDoc wraps component schemas in an otherwise empty document.
func schemaDoc(schemas string) string {
	return `{"openapi": "3.0.1", "paths": {}, "components": {"schemas": {` + schemas + `}}}`
}

func mustObject(t *testing.T, src string) *openapi.Object {
	t.Helper()
	var o openapi.Object
	require.NoError(t, o.UnmarshalJSON([]byte(src)))
	return &o
}

func ref(name string) MortarType {
	return RefTo(TypeRef(openapi.SchemaRefPrefix + name))
}

func objectType(name string, ns []string, props ...Property) *ConcreteType {
	return &ConcreteType{
		ID:        TypeRef(openapi.SchemaRefPrefix + name),
		Namespace: ns,
		Name:      name,
		Body:      ObjectBody{Properties: props},
	}
}

func stringEnum(name string, ns []string, keys ...string) *ConcreteType {
	body := EnumBody{}
	for _, k := range keys {
		body.Elements = append(body.Elements, EnumElement{Key: k})
	}
	return &ConcreteType{ID: TypeRef(openapi.SchemaRefPrefix + name), Namespace: ns, Name: name, Body: body}
}

func newTestResolver(diags *diagnostic.Collector, types ...*ConcreteType) *Resolver {
	b := newTableBuilder()
	for _, c := range types {
		b.add(c)
	}
	return NewResolver(b.freeze(), diags)
}
