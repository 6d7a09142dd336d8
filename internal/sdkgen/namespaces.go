package sdkgen

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// compileBanned joins the banned fragments into one alternation. It returns
// nil when there is nothing to ban.
func compileBanned(fragments []string) (*regexp.Regexp, error) {
	if len(fragments) == 0 {
		return nil, nil
	}
	re, err := regexp.Compile("(?:" + strings.Join(fragments, "|") + ")")
	if err != nil {
		return nil, fmt.Errorf("compiling banned namespaces: %w", err)
	}
	return re, nil
}

// validateNamespaces rejects every group whose path matches a banned fragment,
// reporting the group's types and every other type whose properties refer to
// them.
func validateNamespaces(groups map[string][]*ConcreteType, all []*ConcreteType, fragments []string) error {
	re, err := compileBanned(fragments)
	if err != nil || re == nil {
		return err
	}

	var paths []string
	for p := range groups {
		if re.MatchString(p) {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil
	}
	slices.Sort(paths)

	banned := &BannedNamespaceError{}
	for _, p := range paths {
		failing := make(map[TypeRef]bool)
		ns := BannedNamespace{Path: p}
		for _, c := range groups[p] {
			failing[c.ID] = true
			ns.Types = append(ns.Types, c.ID)
		}
		for _, c := range all {
			if !failing[c.ID] && referencesAny(c, failing) {
				ns.Dependents = append(ns.Dependents, c.ID)
			}
		}
		banned.Namespaces = append(banned.Namespaces, ns)
	}
	return banned
}

// referencesAny reports whether an object property of c refers to one of refs,
// directly or as an array element.
func referencesAny(c *ConcreteType, refs map[TypeRef]bool) bool {
	body, ok := c.Body.(ObjectBody)
	if !ok {
		return false
	}
	for _, p := range body.Properties {
		t := p.Type
		for {
			a, ok := t.(Array)
			if !ok {
				break
			}
			t = a.Elem
		}
		if ref, ok := t.(Reference); ok && refs[ref.Ref] {
			return true
		}
	}
	return false
}
