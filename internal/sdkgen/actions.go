package sdkgen

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// routeParamPattern matches "{name}" segments of a path template.
var routeParamPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// routeTemplate turns "/foos/{id}" into "foos/${routeParams.id}".
func routeTemplate(path string) string {
	path = strings.TrimPrefix(path, "/")
	return routeParamPattern.ReplaceAllStringFunc(path, func(m string) string {
		return "${routeParams." + camelCase(m[1:len(m)-1]) + "}"
	})
}

// sortedEndpoints orders endpoints by path, keeping document order for ties.
func sortedEndpoints(eps []Endpoint) []Endpoint {
	out := slices.Clone(eps)
	slices.SortStableFunc(out, func(a, b Endpoint) int { return cmp.Compare(a.Path, b.Path) })
	return out
}

// paramsObject renders params as an anonymous object type, tracking each type.
func paramsObject(params []Param, nullable bool, r *Resolver, imports *importTracker) *tsObject {
	obj := &tsObject{}
	for _, p := range params {
		imports.Track(p.Type)
		obj.Add(tsMember{Name: camelCase(p.Name), Type: r.RenderName(p.Type), Nullable: nullable})
	}
	return obj
}

// actionWriter emits the action file of one module.
type actionWriter struct {
	module  Module
	r       *Resolver
	opts    Options
	imports *importTracker
	body    strings.Builder
}

func generateActions(m Module, r *Resolver, opts Options) (string, error) {
	w := &actionWriter{module: m, r: r, opts: opts, imports: newImportTracker()}
	for _, ep := range sortedEndpoints(m.Endpoints) {
		if err := w.writeEndpoint(ep); err != nil {
			return "", fmt.Errorf("module %s action %s: %w", m.Name, ep.ActionName, err)
		}
	}

	header, err := w.imports.Render(r, "")
	if err != nil {
		return "", fmt.Errorf("module %s: %w", m.Name, err)
	}

	var sb strings.Builder
	sb.WriteString(fileHeader)
	sb.WriteString(importLine([]string{"makeAction", "makeFormData"}, opts.RuntimeLibrary))
	sb.WriteString(importLine([]string{"apiGet", "apiPost", "apiDelete", "apiPut", "ApiRequestOptions"}, opts.TargetLibrary))
	sb.WriteString(header)
	sb.WriteString("\n")
	sb.WriteString(w.body.String())
	return finishFile(sb.String()), nil
}

func (w *actionWriter) writeEndpoint(ep Endpoint) error {
	verb, err := verbFunction(ep.Method)
	if err != nil {
		return err
	}

	tag := w.module.Name + "/" + ep.ActionName
	baseName := pascalCase(ep.ActionName)

	req := &tsObject{}
	if len(ep.RouteParams) > 0 {
		req.Add(tsMember{Name: "routeParams", Inline: paramsObject(ep.RouteParams, false, w.r, w.imports)})
	}
	if len(ep.QueryParams) > 0 {
		req.Add(tsMember{Name: "queryParams", Inline: paramsObject(ep.QueryParams, w.opts.StrictNullability, w.r, w.imports)})
	}

	var formData *tsObject
	formName := baseName + "ActionFormData"
	if len(ep.FormParams) > 0 {
		formData = paramsObject(ep.FormParams, false, w.r, w.imports)
		req.Add(tsMember{Name: "formParams", Type: formName})
		req.Add(tsMember{Name: "formTransform", Optional: true, Type: "(request: " + formName + ") => FormData"})
	}

	if ep.Request != nil {
		w.imports.Track(ep.Request)
		req.Add(tsMember{Name: "request", Type: w.r.RenderName(ep.Request)})
	}

	response := "void"
	if ep.Response != nil {
		w.imports.Track(ep.Response)
		response = w.r.RenderName(ep.Response)
	}

	req.Add(tsMember{
		Name:     "options",
		Optional: true,
		Type:     fmt.Sprintf("Partial<ApiRequestOptions<%s, %s>>", response, tsString(tag)),
	})

	if formData != nil {
		writeInterface(&w.body, formName, formData)
		w.body.WriteString("\n")
	}
	reqName := baseName + "ActionRequest"
	writeInterface(&w.body, reqName, req)
	w.body.WriteString("\n")

	var args []string
	args = append(args, tsString(tag), "`"+routeTemplate(ep.Path)+"`")
	if ep.Method == MethodGet {
		args = append(args, memberOrUndefined(req, "queryParams"), memberOrUndefined(req, "options"))
	} else {
		body, err := w.bodyArgument(ep, req)
		if err != nil {
			return err
		}
		args = append(args, body, optionsArgument(req))
	}

	fmt.Fprintf(&w.body, "export const %s = makeAction(\n", ep.ActionName)
	w.body.WriteString(indentUnit)
	w.body.WriteString(destructure(req, reqName))
	w.body.WriteString(" =>\n")
	w.body.WriteString(strings.Repeat(indentUnit, 2))
	fmt.Fprintf(&w.body, "%s<%s, %s>(%s),\n", verb, response, tsString(tag), strings.Join(args, ", "))
	w.body.WriteString(indentUnit + tsString(tag) + "\n);\n\n")
	return nil
}

// bodyArgument is the request payload of a non-GET call.
func (w *actionWriter) bodyArgument(ep Endpoint, req *tsObject) (string, error) {
	switch {
	case req.Has("request"):
		return "request", nil
	case req.Has("formParams"):
		entries := make([]tsEntry, 0, len(ep.FormParams))
		for _, p := range ep.FormParams {
			cmd, err := w.formCommand(p)
			if err != nil {
				return "", err
			}
			entries = append(entries, tsEntry{Key: camelCase(p.Name), Value: "'" + cmd + "'"})
		}
		var sb strings.Builder
		sb.WriteString("(formTransform || makeFormData)(formParams, ")
		writeObjectLiteral(&sb, entries, 2)
		sb.WriteString(")")
		return sb.String(), nil
	default:
		return "undefined", nil
	}
}

// formCommand picks how makeFormData encodes a form field. Enums are appended
// as their plain value; other references are serialized as JSON.
func (w *actionWriter) formCommand(p Param) (string, error) {
	switch t := p.Type.(type) {
	case Reference:
		isEnum, err := w.r.IsEnum(t.Ref)
		if err != nil {
			return "", fmt.Errorf("form field %s: %w", p.Name, err)
		}
		if isEnum {
			return "Append", nil
		}
		return "JSON", nil
	case Array:
		if t.Elem == FileLike {
			return "ArrayAppend", nil
		}
		return "JSON", nil
	case Primitive:
		return "Append", nil
	default:
		panic(fmt.Sprintf("sdkgen: unhandled MortarType %T", t))
	}
}

// optionsArgument is the trailing request-options argument of a non-GET call.
// Query params on a non-GET endpoint travel inside the options.
func optionsArgument(req *tsObject) string {
	switch {
	case req.Has("queryParams") && req.Has("options"):
		return "{ params: queryParams, ...options }"
	case req.Has("formParams"):
		if req.Has("options") {
			return "{ contentType: null, ...options }"
		}
		return "undefined"
	default:
		return memberOrUndefined(req, "options")
	}
}

func memberOrUndefined(req *tsObject, name string) string {
	if req.Has(name) {
		return name
	}
	return "undefined"
}

// destructure renders the single parameter of an action function.
func destructure(req *tsObject, typeName string) string {
	s := "({ " + strings.Join(req.Names(), ", ") + " }: " + typeName
	if req.AllOptional() {
		s += " = {}"
	}
	return s + ")"
}

func verbFunction(m Method) (string, error) {
	switch m {
	case MethodGet:
		return "apiGet", nil
	case MethodPost:
		return "apiPost", nil
	case MethodPut:
		return "apiPut", nil
	case MethodDelete:
		return "apiDelete", nil
	default:
		return "", fmt.Errorf("%v: %w", m, ErrUnknownVerb)
	}
}
