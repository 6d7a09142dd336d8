package sdkgen

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

type namedObject struct {
	name string
	obj  *tsObject
}

// generateRequests emits the endpoints-only file of one module: a PathFactory
// building each endpoint's URL plus the route and query parameter shapes.
func generateRequests(m Module, r *Resolver, opts Options) (string, error) {
	imports := newImportTracker()
	var paths []tsEntry
	var shapes []namedObject

	for _, ep := range sortedEndpoints(m.Endpoints) {
		base := pascalCase(ep.ActionName)
		if len(ep.RouteParams) > 0 {
			name := base + "RouteParams"
			shapes = append(shapes, namedObject{name, paramsObject(ep.RouteParams, false, r, imports)})
			paths = append(paths, tsEntry{
				Key:   base,
				Value: fmt.Sprintf("(routeParams: %s) => `${base_path}%s`", name, routeTemplate(ep.Path)),
			})
		} else {
			paths = append(paths, tsEntry{
				Key:   base,
				Value: "`${base_path}" + strings.TrimPrefix(ep.Path, "/") + "`",
			})
		}
		if len(ep.QueryParams) > 0 {
			shapes = append(shapes, namedObject{base + "QueryParams", paramsObject(ep.QueryParams, opts.StrictNullability, r, imports)})
		}
	}
	slices.SortStableFunc(shapes, func(a, b namedObject) int { return cmp.Compare(a.name, b.name) })

	header, err := imports.Render(r, "")
	if err != nil {
		return "", fmt.Errorf("module %s: %w", m.Name, err)
	}

	var sb strings.Builder
	sb.WriteString(fileHeader)
	sb.WriteString(header)
	sb.WriteString("\nexport const PathFactory = (base_path: string) => (")
	writeObjectLiteral(&sb, paths, 0)
	sb.WriteString(");\n")
	for _, s := range shapes {
		sb.WriteString("\n")
		writeInterface(&sb, s.name, s.obj)
	}
	return finishFile(sb.String()), nil
}
