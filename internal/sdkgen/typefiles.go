package sdkgen

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// TypeFile is the generated source of one namespace group.
type TypeFile struct {
	Path   string // group path, e.g. "mortar/Foo/Bar"
	Source string
}

// groupByNamespace groups types by group path, keeping table order within a
// group.
func groupByNamespace(types []*ConcreteType) map[string][]*ConcreteType {
	groups := make(map[string][]*ConcreteType)
	for _, c := range types {
		p := groupPath(c)
		groups[p] = append(groups[p], c)
	}
	return groups
}

func generateTypeFile(path string, types []*ConcreteType, r *Resolver) (TypeFile, error) {
	sorted := slices.Clone(types)
	slices.SortStableFunc(sorted, func(a, b *ConcreteType) int { return cmp.Compare(a.Name, b.Name) })

	imports := newImportTracker()
	emittedGenerics := make(map[string]bool)
	var body strings.Builder

	for _, c := range sorted {
		if c.Generics != nil {
			if emittedGenerics[c.Name] {
				continue
			}
			emittedGenerics[c.Name] = true
		}
		if err := writeConcreteType(&body, c, r, imports); err != nil {
			return TypeFile{}, fmt.Errorf("type %s: %w", c.ID, err)
		}
		body.WriteString("\n")
	}

	header, err := imports.Render(r, path)
	if err != nil {
		return TypeFile{}, fmt.Errorf("namespace %s: %w", path, err)
	}

	var sb strings.Builder
	sb.WriteString(fileHeader)
	sb.WriteString(header)
	sb.WriteString("\n")
	sb.WriteString(body.String())
	return TypeFile{Path: path, Source: finishFile(sb.String())}, nil
}

// declaredName is the name used in the declaration; generics get T0..Tn
// placeholders instead of the instantiation's arguments.
func declaredName(c *ConcreteType) string {
	if c.Generics == nil {
		return c.Name
	}
	params := make([]string, len(c.Generics.Arguments))
	for i := range params {
		params[i] = fmt.Sprintf("T%d", i)
	}
	return c.Name + "<" + strings.Join(params, ", ") + ">"
}

func writeConcreteType(sb *strings.Builder, c *ConcreteType, r *Resolver, imports *importTracker) error {
	name := declaredName(c)
	switch body := c.Body.(type) {
	case EnumBody:
		writeEnum(sb, name, body.Elements)
		return nil
	case ObjectBody:
		obj := &tsObject{}
		for _, p := range body.Properties {
			var rendered string
			if info, ok := genericProperty(c, p.Name); ok {
				s, err := renderGenericTree(info, p.Type, r, imports)
				if err != nil {
					return fmt.Errorf("property %s: %w", p.Name, err)
				}
				rendered = s
			} else {
				imports.Track(p.Type)
				rendered = r.RenderName(p.Type)
			}
			obj.Add(tsMember{Name: p.Name, Type: rendered})
		}
		writeInterface(sb, name, obj)
		return nil
	default:
		panic(fmt.Sprintf("sdkgen: unhandled Body %T", body))
	}
}

func genericProperty(c *ConcreteType, prop string) (GenericParamInfo, bool) {
	if c.Generics == nil {
		return nil, false
	}
	info, ok := c.Generics.Properties[prop]
	return info, ok
}
