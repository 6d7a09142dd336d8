package sdkgen

import (
	"fmt"
	"strings"

	"github.com/LukeThoma5/mortar/internal/diagnostic"
)

// Resolver answers reference lookups and renders TypeScript type names. It
// never mutates the schema table and is safe for concurrent use.
type Resolver struct {
	schemas *SchemaTable
	diags   *diagnostic.Collector
}

// NewResolver returns a Resolver over schemas. diags may be nil.
func NewResolver(schemas *SchemaTable, diags *diagnostic.Collector) *Resolver {
	return &Resolver{schemas: schemas, diags: diags}
}

// Resolve returns the concrete type behind ref.
func (r *Resolver) Resolve(ref TypeRef) (*ConcreteType, error) {
	c, ok := r.schemas.Lookup(ref)
	if !ok {
		return nil, fmt.Errorf("%s: %w", ref, ErrUnresolvedReference)
	}
	return c, nil
}

// IsEnum reports whether ref names an enum type.
func (r *Resolver) IsEnum(ref TypeRef) (bool, error) {
	c, err := r.Resolve(ref)
	if err != nil {
		return false, err
	}
	return c.IsEnum(), nil
}

// RenderName returns the TypeScript spelling of t. A reference that cannot be
// resolved renders as any and is reported as a warning.
func (r *Resolver) RenderName(t MortarType) string {
	switch t := t.(type) {
	case Primitive:
		return primitiveName(t)
	case Array:
		return r.RenderName(t.Elem) + "[]"
	case Reference:
		c, ok := r.schemas.Lookup(t.Ref)
		if !ok {
			r.diags.WarnWithHint(diagnostic.CategoryUnresolvedName, string(t.Ref),
				"reference could not be resolved, rendering as any",
				"nested generic instantiations must be declared as schemas of their own")
			return "any"
		}
		if c.Generics == nil {
			return c.Name
		}
		args := make([]string, len(c.Generics.Arguments))
		for i, a := range c.Generics.Arguments {
			args[i] = r.RenderName(a)
		}
		return c.Name + "<" + strings.Join(args, ", ") + ">"
	default:
		panic(fmt.Sprintf("sdkgen: unhandled MortarType %T", t))
	}
}

func primitiveName(p Primitive) string {
	switch p {
	case Int32, Float32:
		return "number"
	case Bool:
		return "boolean"
	case Str, Uuid, DateTime:
		return "string"
	case FileLike:
		return "File"
	case Any:
		return "any"
	default:
		panic(fmt.Sprintf("sdkgen: unhandled primitive %v", p))
	}
}
