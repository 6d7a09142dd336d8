package sdkgen

import (
	"fmt"
	"strings"
)

// renderGenericTree renders a generic property. paired is the property's own
// declared type and drives how Nested entries are interpreted. Only terminal
// leaves are tracked for import.
func renderGenericTree(info GenericParamInfo, paired MortarType, r *Resolver, imports *importTracker) (string, error) {
	switch info := info.(type) {
	case GenericPosition:
		return fmt.Sprintf("T%d", int(info)), nil
	case GenericTerminal:
		imports.Track(info.Type)
		return r.RenderName(info.Type), nil
	case GenericNested:
		return renderNested(info, paired, r, imports)
	default:
		panic(fmt.Sprintf("sdkgen: unhandled GenericParamInfo %T", info))
	}
}

func renderNested(items GenericNested, paired MortarType, r *Resolver, imports *importTracker) (string, error) {
	switch t := paired.(type) {
	case Reference:
		c, err := r.Resolve(t.Ref)
		if err != nil {
			return "", fmt.Errorf("generic property type: %w", err)
		}
		if c.Generics == nil {
			return c.Name, nil
		}
		if len(items) != len(c.Generics.Arguments) {
			return "", fmt.Errorf("%d generic entries for %s with %d arguments: %w",
				len(items), c.ID, len(c.Generics.Arguments), ErrGenericShapeMismatch)
		}
		args := make([]string, len(items))
		for i, item := range items {
			s, err := renderGenericTree(item, c.Generics.Arguments[i], r, imports)
			if err != nil {
				return "", err
			}
			args[i] = s
		}
		return c.Name + "<" + strings.Join(args, ", ") + ">", nil

	case Array:
		if len(items) != 1 {
			return "", fmt.Errorf("%d generic entries for an array: %w", len(items), ErrGenericShapeMismatch)
		}
		switch item := items[0].(type) {
		case GenericPosition:
			return fmt.Sprintf("T%d[]", int(item)), nil
		case GenericTerminal:
			imports.Track(item.Type)
			return r.RenderName(item.Type) + "[]", nil
		default:
			return "", fmt.Errorf("nested generic array element: %w", ErrGenericShapeMismatch)
		}

	default:
		return "", fmt.Errorf("generic entries for non-generic type %v: %w", paired, ErrGenericShapeMismatch)
	}
}
