package sdkgen

import (
	"fmt"
	"slices"
	"strings"
)

// importRoot prefixes every namespace group path.
const importRoot = "mortar"

// groupPath returns the import path of c's namespace, e.g. "mortar/Foo/Bar".
func groupPath(c *ConcreteType) string {
	return importRoot + "/" + strings.Join(c.Namespace, "/")
}

// importTracker collects the types one output unit touches. It is write-once:
// after render it accepts no more types.
type importTracker struct {
	touched map[MortarType]struct{}
	sealed  bool
}

func newImportTracker() *importTracker {
	return &importTracker{touched: make(map[MortarType]struct{})}
}

// Track records t as used by the unit.
func (it *importTracker) Track(t MortarType) {
	if it.sealed {
		panic("sdkgen: import tracker used after render")
	}
	it.touched[t] = struct{}{}
}

// groups expands the touched types into symbol sets keyed by group path.
func (it *importTracker) groups(r *Resolver) (map[string]map[string]struct{}, error) {
	out := make(map[string]map[string]struct{})
	var add func(t MortarType) error
	add = func(t MortarType) error {
		switch t := t.(type) {
		case Primitive:
			return nil
		case Array:
			return add(t.Elem)
		case Reference:
			c, err := r.Resolve(t.Ref)
			if err != nil {
				return fmt.Errorf("importing: %w", err)
			}
			if c.Generics != nil {
				for _, arg := range c.Generics.Arguments {
					if err := add(arg); err != nil {
						return err
					}
				}
			}
			path := groupPath(c)
			if out[path] == nil {
				out[path] = make(map[string]struct{})
			}
			out[path][c.Name] = struct{}{}
			return nil
		default:
			panic(fmt.Sprintf("sdkgen: unhandled MortarType %T", t))
		}
	}
	for t := range it.touched {
		if err := add(t); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Render seals the tracker and returns one import line per group, skipping
// self (the unit's own path, empty for none).
func (it *importTracker) Render(r *Resolver, self string) (string, error) {
	it.sealed = true
	groups, err := it.groups(r)
	if err != nil {
		return "", err
	}

	paths := make([]string, 0, len(groups))
	for p := range groups {
		if p != self {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)

	var sb strings.Builder
	for _, p := range paths {
		symbols := make([]string, 0, len(groups[p]))
		for s := range groups[p] {
			symbols = append(symbols, s)
		}
		slices.Sort(symbols)
		sb.WriteString(importLine(symbols, p))
	}
	return sb.String(), nil
}
