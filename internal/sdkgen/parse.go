package sdkgen

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/LukeThoma5/mortar/internal/diagnostic"
	"github.com/LukeThoma5/mortar/internal/openapi"
)

// Parse builds the model for doc. Non-fatal findings are reported to diags,
// which may be nil.
func Parse(doc *openapi.Document, diags *diagnostic.Collector) (*Model, error) {
	p := &parser{
		shapes:  shapeDecoder{diags: diags},
		diags:   diags,
		modules: make(map[string]*Module),
		table:   newTableBuilder(),
	}

	for _, path := range doc.Paths.Keys() {
		item, _ := doc.Paths.Get(path)
		verbs := []struct {
			method Method
			op     *openapi.Operation
		}{
			{MethodGet, item.Get},
			{MethodPost, item.Post},
			{MethodPut, item.Put},
			{MethodDelete, item.Delete},
		}
		for _, v := range verbs {
			if v.op == nil {
				continue
			}
			if err := p.parseEndpoint(path, v.method, v.op); err != nil {
				return nil, fmt.Errorf("%s %s: %w", v.method, path, err)
			}
		}
	}

	for _, name := range doc.Components.Schemas.Keys() {
		schema, _ := doc.Components.Schemas.Get(name)
		ref := TypeRef(openapi.SchemaRefPrefix + name)
		if err := p.parseSchema(ref, &schema); err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}
	}

	model := &Model{Schemas: p.table.freeze()}
	for _, m := range p.modules {
		model.Modules = append(model.Modules, *m)
	}
	slices.SortFunc(model.Modules, func(a, b Module) int { return cmp.Compare(a.Name, b.Name) })
	return model, nil
}

type parser struct {
	shapes  shapeDecoder
	diags   *diagnostic.Collector
	modules map[string]*Module
	table   *tableBuilder
}

func (p *parser) parseEndpoint(path string, method Method, op *openapi.Operation) error {
	if op.Meta == nil || op.Meta.ActionName == "" || op.Meta.ActionGroup == "" {
		return fmt.Errorf("endpoint needs %s actionName and actionGroup: %w", metaKey, ErrMissingMetadata)
	}

	ep := Endpoint{
		Method:     method,
		Path:       path,
		ActionName: op.Meta.ActionName,
		ModuleName: op.Meta.ActionGroup,
	}
	subject := op.Meta.ActionGroup + "/" + op.Meta.ActionName

	for _, param := range op.Parameters {
		if param.Name == "" || param.Schema == nil {
			return fmt.Errorf("%s: parameter %q needs a name and a schema: %w", subject, param.Name, ErrUnknownSchemaShape)
		}
		t, err := p.shapes.decode(param.Schema, subject+" parameter "+param.Name)
		if err != nil {
			return err
		}
		mp := Param{Name: param.Name, Type: t}
		switch param.In {
		case "path":
			ep.RouteParams = append(ep.RouteParams, mp)
		case "query":
			ep.QueryParams = append(ep.QueryParams, mp)
		case "header":
			p.diags.Info(diagnostic.CategoryParameterDropped, subject, "header parameter "+param.Name+" is not modeled")
		default:
			return fmt.Errorf("%s: parameter %q in %q: %w", subject, param.Name, param.In, ErrUnknownParameterLocation)
		}
	}

	if op.RequestBody != nil {
		if media, ok := op.RequestBody.Content["application/json"]; ok && media.Schema != nil {
			t, err := p.shapes.decode(media.Schema, subject+" request")
			if err != nil {
				return err
			}
			ep.Request = t
		} else if media, ok := op.RequestBody.Content["multipart/form-data"]; ok && media.Schema != nil {
			props, _ := media.Schema.GetObject("properties")
			if props != nil {
				for _, name := range props.Keys() {
					prop, ok := props.GetObject(name)
					if !ok {
						return fmt.Errorf("%s: form property %q is not a schema: %w", subject, name, ErrUnknownSchemaShape)
					}
					t, err := p.shapes.decode(prop, subject+" form "+name)
					if err != nil {
						return err
					}
					ep.FormParams = append(ep.FormParams, Param{Name: name, Type: t})
				}
			}
		}
	}

	if resp, ok := op.Responses["200"]; ok {
		if media, ok := resp.Content["application/json"]; ok && media.Schema != nil {
			t, err := p.shapes.decode(media.Schema, subject+" response")
			if err != nil {
				return err
			}
			ep.Response = t
		}
	}

	m, ok := p.modules[ep.ModuleName]
	if !ok {
		m = &Module{Name: ep.ModuleName}
		p.modules[ep.ModuleName] = m
	}
	m.Endpoints = append(m.Endpoints, ep)
	return nil
}

func (p *parser) parseSchema(ref TypeRef, schema *openapi.Object) error {
	meta, ok := schema.GetObject(metaKey)
	if !ok {
		return fmt.Errorf("no %s extension: %w", metaKey, ErrMissingMetadata)
	}
	namespace, err := stringList(meta, "ns")
	if err != nil {
		return err
	}
	name, ok := meta.GetString("ne")
	if !ok {
		return fmt.Errorf("%s.ne: %w", metaKey, ErrMissingMetadata)
	}

	c := &ConcreteType{ID: ref, Namespace: namespace, Name: name}
	if c.Body, err = p.parseBody(ref, schema); err != nil {
		return err
	}
	if c.Generics, err = p.parseGenerics(ref, meta); err != nil {
		return err
	}

	p.table.add(c)
	return nil
}

func (p *parser) parseBody(ref TypeRef, schema *openapi.Object) (Body, error) {
	typ, _ := schema.GetString("type")
	switch typ {
	case "object":
		var body ObjectBody
		if !schema.Has("properties") {
			return body, nil
		}
		props, ok := schema.GetObject("properties")
		if !ok {
			return nil, fmt.Errorf("properties is not an object: %w", ErrUnknownSchemaShape)
		}
		for _, name := range props.Keys() {
			prop, ok := props.GetObject(name)
			if !ok {
				return nil, fmt.Errorf("property %q is not a schema: %w", name, ErrUnknownSchemaShape)
			}
			t, err := p.shapes.decode(prop, string(ref)+"."+name)
			if err != nil {
				return nil, err
			}
			body.Properties = append(body.Properties, Property{Name: name, Type: t})
		}
		return body, nil

	case "string", "integer":
		values, ok := schema.GetArray("enum")
		if !ok {
			return nil, fmt.Errorf("%s schema without enum: %w", typ, ErrUnknownSchemaShape)
		}
		var body EnumBody
		seen := make(map[string]bool, len(values))
		for _, v := range values {
			var el EnumElement
			if typ == "string" {
				key, ok := openapi.AsString(v)
				if !ok {
					return nil, fmt.Errorf("enum value %s is not a string: %w", v, ErrUnknownSchemaShape)
				}
				el.Key = key
			} else {
				if v.Kind() != '0' {
					return nil, fmt.Errorf("enum value %s is not a number: %w", v, ErrUnknownSchemaShape)
				}
				lit := string(v)
				el.Key, el.Raw = lit, &lit
			}
			if seen[el.Key] {
				return nil, fmt.Errorf("duplicate enum key %q: %w", el.Key, ErrUnknownSchemaShape)
			}
			seen[el.Key] = true
			body.Elements = append(body.Elements, el)
		}
		return body, nil

	default:
		return nil, fmt.Errorf("type %q: %w", typ, ErrUnknownSchemaShape)
	}
}

func (p *parser) parseGenerics(ref TypeRef, meta *openapi.Object) (*GenericInfo, error) {
	var args []MortarType
	if meta.Has("ga") {
		names, err := stringList(meta, "ga")
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			t, err := decodeGenericName(n)
			if err != nil {
				return nil, err
			}
			args = append(args, t)
		}
	}

	if len(args) == 0 {
		if meta.Has("gm") {
			p.diags.Warn(diagnostic.CategoryGenericArguments, string(ref),
				"generic property map without generic arguments is ignored")
		}
		return nil, nil
	}

	info := &GenericInfo{Arguments: args, Properties: make(map[string]GenericParamInfo)}
	if !meta.Has("gm") {
		return info, nil
	}
	gm, ok := meta.GetObject("gm")
	if !ok {
		return nil, fmt.Errorf("%s.gm is not an object: %w", metaKey, ErrUnknownSchemaShape)
	}
	for _, prop := range gm.Keys() {
		raw, _ := gm.Raw(prop)
		pi, err := decodeParamInfo(raw)
		if err != nil {
			return nil, fmt.Errorf("generic property %q: %w", prop, err)
		}
		info.Properties[prop] = pi
	}
	return info, nil
}

// stringList reads meta[key] as an array of strings.
func stringList(meta *openapi.Object, key string) ([]string, error) {
	items, ok := meta.GetArray(key)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", metaKey, key, ErrMissingMetadata)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := openapi.AsString(item)
		if !ok {
			return nil, fmt.Errorf("%s.%s entry %s is not a string: %w", metaKey, key, item, ErrMissingMetadata)
		}
		out = append(out, s)
	}
	return out, nil
}
