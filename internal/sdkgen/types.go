// Package sdkgen turns an annotated OpenAPI document into TypeScript client
// sources: one action file per endpoint module and one type file per
// namespace.
package sdkgen

import "fmt"

// MortarType is a schema scalar, container or reference. Implementations are
// comparable so values can be used as map keys.
type MortarType interface {
	isMortarType()
}

// Primitive is a scalar MortarType.
type Primitive int

const (
	Int32 Primitive = iota
	Float32
	Bool
	Str
	Uuid
	DateTime
	FileLike
	Any
)

func (Primitive) isMortarType() {}

func (p Primitive) String() string {
	switch p {
	case Int32:
		return "Int32"
	case Float32:
		return "Float32"
	case Bool:
		return "Bool"
	case Str:
		return "Str"
	case Uuid:
		return "Uuid"
	case DateTime:
		return "DateTime"
	case FileLike:
		return "FileLike"
	case Any:
		return "Any"
	default:
		return fmt.Sprintf("Primitive(%d)", int(p))
	}
}

// Array is a list of Elem. Elem is never nil.
type Array struct {
	Elem MortarType
}

func (Array) isMortarType() {}

func (a Array) String() string { return fmt.Sprintf("Array(%v)", a.Elem) }

// ArrayOf returns an Array of elem.
func ArrayOf(elem MortarType) MortarType { return Array{Elem: elem} }

// TypeRef identifies one schema table entry, e.g. "#/components/schemas/Foo".
type TypeRef string

// Reference points at a ConcreteType in the SchemaTable.
type Reference struct {
	Ref TypeRef
}

func (Reference) isMortarType() {}

func (r Reference) String() string { return fmt.Sprintf("Reference(%s)", r.Ref) }

// RefTo returns a Reference to ref.
func RefTo(ref TypeRef) MortarType { return Reference{Ref: ref} }

// ConcreteType is a named object or enum schema.
type ConcreteType struct {
	ID        TypeRef
	Namespace []string
	Name      string
	Body      Body
	Generics  *GenericInfo // nil unless the type has generic arguments
}

// Body is either ObjectBody or EnumBody.
type Body interface {
	isBody()
}

// Property is one object member.
type Property struct {
	Name string
	Type MortarType
}

// ObjectBody lists members in document order.
type ObjectBody struct {
	Properties []Property
}

func (ObjectBody) isBody() {}

// EnumElement is one enum member. Raw is the literal for integer enums and
// nil for string enums.
type EnumElement struct {
	Key string
	Raw *string
}

// EnumBody lists elements in document order.
type EnumBody struct {
	Elements []EnumElement
}

func (EnumBody) isBody() {}

// IsEnum reports whether the body is an enum.
func (c *ConcreteType) IsEnum() bool {
	_, ok := c.Body.(EnumBody)
	return ok
}

// GenericInfo describes an instantiated generic type.
type GenericInfo struct {
	Arguments  []MortarType
	Properties map[string]GenericParamInfo // property name -> parameter tree
}

// GenericParamInfo describes how a property type depends on the generic
// positions of its enclosing type.
type GenericParamInfo interface {
	isGenericParamInfo()
}

// GenericPosition refers to the enclosing type's i-th generic argument.
type GenericPosition int

func (GenericPosition) isGenericParamInfo() {}

// GenericTerminal is a fixed type inside a generic property.
type GenericTerminal struct {
	Type MortarType
}

func (GenericTerminal) isGenericParamInfo() {}

// GenericNested pairs with the property's own generic arguments (or array
// element) position by position.
type GenericNested []GenericParamInfo

func (GenericNested) isGenericParamInfo() {}

// Method is an HTTP verb the generator models.
type Method int

const (
	MethodGet Method = iota
	MethodPost
	MethodPut
	MethodDelete
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	case MethodPut:
		return "PUT"
	case MethodDelete:
		return "DELETE"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Param is a named route, query or form parameter.
type Param struct {
	Name string
	Type MortarType
}

// Endpoint is one operation of the document.
type Endpoint struct {
	Method      Method
	Path        string // "/foos/{id}"
	RouteParams []Param
	QueryParams []Param
	FormParams  []Param
	Request     MortarType // nil when there is no JSON body
	Response    MortarType // nil when there is no 200 JSON response
	ActionName  string
	ModuleName  string
}

// Module groups the endpoints that share an action group.
type Module struct {
	Name      string
	Endpoints []Endpoint
}

// SchemaTable maps references to concrete types in insertion order. It is
// read-only once parsing returns.
type SchemaTable struct {
	order []TypeRef
	types map[TypeRef]*ConcreteType
}

// Lookup returns the type registered under ref.
func (t *SchemaTable) Lookup(ref TypeRef) (*ConcreteType, bool) {
	if t == nil {
		return nil, false
	}
	c, ok := t.types[ref]
	return c, ok
}

// All returns every type in insertion order.
func (t *SchemaTable) All() []*ConcreteType {
	if t == nil {
		return nil
	}
	out := make([]*ConcreteType, 0, len(t.order))
	for _, ref := range t.order {
		out = append(out, t.types[ref])
	}
	return out
}

// Len returns the number of types.
func (t *SchemaTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// tableBuilder fills a SchemaTable during parsing.
type tableBuilder struct {
	table *SchemaTable
}

func newTableBuilder() *tableBuilder {
	return &tableBuilder{table: &SchemaTable{types: make(map[TypeRef]*ConcreteType)}}
}

func (b *tableBuilder) add(c *ConcreteType) {
	if _, dup := b.table.types[c.ID]; !dup {
		b.table.order = append(b.table.order, c.ID)
	}
	b.table.types[c.ID] = c
}

// freeze hands the table off; the builder must not be used afterwards.
func (b *tableBuilder) freeze() *SchemaTable {
	t := b.table
	b.table = nil
	return t
}

// Model is the parsed document.
type Model struct {
	Modules []Module // sorted by name
	Schemas *SchemaTable
}
