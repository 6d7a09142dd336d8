package sdkgen

import (
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/LukeThoma5/mortar/internal/diagnostic"
	"github.com/LukeThoma5/mortar/internal/openapi"
)

// metaKey is the vendor extension carrying generator metadata.
const metaKey = "x-mtr"

const nullableMarker = "Nullable__"

// sentinelNames are schema names that carry no usable shape and render as any.
var sentinelNames = map[string]bool{
	"Object":     true,
	"Dictionary": true,
	"JToken":     true,
}

// shapeDecoder converts inline schemas into MortarTypes.
type shapeDecoder struct {
	diags *diagnostic.Collector
}

// decode maps an inline schema to a MortarType. subject names the schema's
// owner in errors and diagnostics.
func (d *shapeDecoder) decode(schema *openapi.Object, subject string) (MortarType, error) {
	if schema == nil {
		return nil, fmt.Errorf("%s: no schema: %w", subject, ErrUnknownSchemaShape)
	}
	if schema.Has("$ref") {
		ref, ok := schema.GetString("$ref")
		if !ok {
			return nil, fmt.Errorf("%s: $ref is not a string: %w", subject, ErrMalformedReference)
		}
		if !strings.HasPrefix(ref, openapi.SchemaRefPrefix) {
			return nil, fmt.Errorf("%s: %q: %w", subject, ref, ErrMalformedReference)
		}
		return RefTo(TypeRef(ref)), nil
	}
	if schema.Has("anyOf") {
		return Any, nil
	}

	typ, _ := schema.GetString("type")
	format, _ := schema.GetString("format")

	switch {
	case typ == "date-time":
		return DateTime, nil
	case format == "int32" || format == "int64" || typ == "integer":
		return Int32, nil
	case typ == "boolean":
		return Bool, nil
	case typ == "number" || typ == "float":
		return Float32, nil
	case format == "uuid":
		return Uuid, nil
	case typ == "string" && format == "binary":
		return FileLike, nil
	case typ == "string":
		return Str, nil
	case typ == "object" && !schema.Has("additionalProperties"):
		return Any, nil
	case typ == "array":
		items, ok := schema.GetObject("items")
		if !ok {
			return nil, fmt.Errorf("%s: array without items: %w", subject, ErrUnknownSchemaShape)
		}
		elem, err := d.decode(items, subject+"[]")
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	}

	if inner, ok := schema.GetObject("additionalProperties"); ok {
		return d.decode(inner, subject)
	}
	if meta, ok := schema.GetObject(metaKey); ok {
		if name, ok := meta.GetString("ne"); ok && sentinelNames[name] {
			d.diags.Info(diagnostic.CategorySchemaFallback, subject,
				fmt.Sprintf("%s carries no shape, rendering as any", name))
			return Any, nil
		}
	}
	return nil, fmt.Errorf("%s: type %q format %q: %w", subject, typ, format, ErrUnknownSchemaShape)
}

// decodeGenericName maps a generic argument name such as
// "#/components/schemas/Nullable__Int32[]" to a MortarType.
func decodeGenericName(name string) (MortarType, error) {
	if trimmed, ok := strings.CutSuffix(name, "[]"); ok {
		elem, err := decodeGenericName(trimmed)
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	}

	name = strings.ReplaceAll(name, nullableMarker, "")
	bare, ok := strings.CutPrefix(name, openapi.SchemaRefPrefix)
	if !ok {
		return nil, fmt.Errorf("generic argument %q: %w", name, ErrMalformedReference)
	}

	switch bare {
	case "String":
		return Str, nil
	case "Boolean":
		return Bool, nil
	case "Object":
		return Any, nil
	case "DateTime":
		return DateTime, nil
	case "Guid":
		return Uuid, nil
	case "Decimal", "Single", "Double":
		return Float32, nil
	}
	if strings.Contains(bare, "Int") {
		return Int32, nil
	}
	return RefTo(TypeRef(name)), nil
}

// decodeParamInfo decodes one generic property map entry.
func decodeParamInfo(v jsontext.Value) (GenericParamInfo, error) {
	switch v.Kind() {
	case '0':
		var pos uint64
		if err := json.Unmarshal(v, &pos); err != nil {
			return nil, fmt.Errorf("generic position %s: %w", v, ErrUnknownSchemaShape)
		}
		return GenericPosition(pos), nil
	case '"':
		name, _ := openapi.AsString(v)
		t, err := decodeGenericName(name)
		if err != nil {
			return nil, err
		}
		return GenericTerminal{Type: t}, nil
	case '[':
		items, _ := openapi.AsArray(v)
		nested := make(GenericNested, 0, len(items))
		for _, item := range items {
			info, err := decodeParamInfo(item)
			if err != nil {
				return nil, err
			}
			nested = append(nested, info)
		}
		return nested, nil
	default:
		return nil, fmt.Errorf("generic parameter %s: %w", v, ErrUnknownSchemaShape)
	}
}
