// Package openapi decodes the subset of an OpenAPI 3.x document that the
// generator reads, keeping the member order of every JSON object.
package openapi

import (
	"bytes"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// SchemaRefPrefix prefixes every component schema reference.
const SchemaRefPrefix = "#/components/schemas/"

// Document is the decoded input document.
type Document struct {
	OpenAPI    string         `json:"openapi"`
	Paths      Map[PathItem]  `json:"paths"`
	Components Components     `json:"components"`
	Info       map[string]any `json:"info,omitempty"`
}

// Components holds the component schemas, keyed by bare schema name.
type Components struct {
	Schemas Map[Object] `json:"schemas"`
}

// PathItem holds the operations the generator models. Other verbs are ignored.
type PathItem struct {
	Get    *Operation `json:"get,omitempty"`
	Post   *Operation `json:"post,omitempty"`
	Put    *Operation `json:"put,omitempty"`
	Delete *Operation `json:"delete,omitempty"`
}

// Operation is a single endpoint.
type Operation struct {
	Tags        []string            `json:"tags,omitempty"`
	Description string              `json:"description,omitempty"`
	Meta        *ActionMeta         `json:"x-mtr,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses,omitempty"`
}

// ActionMeta is the per-endpoint extension naming the generated action and
// the module it belongs to.
type ActionMeta struct {
	ActionName  string `json:"actionName"`
	ActionGroup string `json:"actionGroup"`
}

// Parameter is a path, query or header parameter.
type Parameter struct {
	Name     string  `json:"name"`
	In       string  `json:"in"`
	Required bool    `json:"required,omitempty"`
	Schema   *Object `json:"schema,omitempty"`
}

// RequestBody maps content types to their media descriptions.
type RequestBody struct {
	Content map[string]MediaType `json:"content"`
}

// Response maps content types to their media descriptions.
type Response struct {
	Description string               `json:"description,omitempty"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// MediaType carries the schema of one content type.
type MediaType struct {
	Schema *Object `json:"schema,omitempty"`
}

// Decode parses raw document bytes.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing OpenAPI JSON: %w", err)
	}
	return &doc, nil
}

// Object is a JSON object whose member order is preserved. Values are kept
// raw and decoded on demand.
type Object struct {
	keys   []string
	values map[string]jsontext.Value
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	tok, err := dec.ReadToken()
	if err != nil {
		return err
	}
	if tok.Kind() != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok.Kind())
	}
	o.keys = nil
	o.values = make(map[string]jsontext.Value)
	for dec.PeekKind() != '}' {
		keyTok, err := dec.ReadToken()
		if err != nil {
			return err
		}
		// The token is only valid until the next decoder call.
		key := keyTok.String()
		val, err := dec.ReadValue()
		if err != nil {
			return err
		}
		if _, dup := o.values[key]; !dup {
			o.keys = append(o.keys, key)
		}
		o.values[key] = append(jsontext.Value(nil), val...)
	}
	if _, err := dec.ReadToken(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON implements json.Marshaler, writing members in their original order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf)
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return nil, err
	}
	for _, k := range o.keys {
		if err := enc.WriteToken(jsontext.String(k)); err != nil {
			return nil, err
		}
		if err := enc.WriteValue(o.values[k]); err != nil {
			return nil, err
		}
	}
	if err := enc.WriteToken(jsontext.EndObject); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}

// Keys returns member names in document order.
func (o Object) Keys() []string { return o.keys }

// Len returns the number of members.
func (o Object) Len() int { return len(o.keys) }

// Has reports whether the member exists.
func (o Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Raw returns the raw member value.
func (o Object) Raw(key string) (jsontext.Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// GetString returns a string member. The second result is false when the member
// is missing or not a string.
func (o Object) GetString(key string) (string, bool) {
	v, ok := o.values[key]
	if !ok || v.Kind() != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

// GetObject returns a nested object member.
func (o Object) GetObject(key string) (*Object, bool) {
	v, ok := o.values[key]
	if !ok || v.Kind() != '{' {
		return nil, false
	}
	var child Object
	if err := child.UnmarshalJSON(v); err != nil {
		return nil, false
	}
	return &child, true
}

// GetArray returns the elements of an array member.
func (o Object) GetArray(key string) ([]jsontext.Value, bool) {
	v, ok := o.values[key]
	if !ok {
		return nil, false
	}
	return AsArray(v)
}

// AsArray decodes a raw array value into its raw elements.
func AsArray(v jsontext.Value) ([]jsontext.Value, bool) {
	if v.Kind() != '[' {
		return nil, false
	}
	var items []jsontext.Value
	if err := json.Unmarshal(v, &items); err != nil {
		return nil, false
	}
	return items, true
}

// AsString decodes a raw string value.
func AsString(v jsontext.Value) (string, bool) {
	if v.Kind() != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

// Map is an insertion-ordered JSON object with typed values.
type Map[V any] struct {
	keys   []string
	values map[string]V
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Map[V]) UnmarshalJSON(data []byte) error {
	var obj Object
	if err := obj.UnmarshalJSON(data); err != nil {
		return err
	}
	m.keys = obj.keys
	m.values = make(map[string]V, len(obj.keys))
	for _, k := range obj.keys {
		var v V
		if err := json.Unmarshal(obj.values[k], &v); err != nil {
			return fmt.Errorf("%q: %w", k, err)
		}
		m.values[k] = v
	}
	return nil
}

// Keys returns entry names in document order.
func (m Map[V]) Keys() []string { return m.keys }

// Len returns the number of entries.
func (m Map[V]) Len() int { return len(m.keys) }

// Get returns the entry for key.
func (m Map[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}
