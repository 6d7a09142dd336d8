package sdkgen

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedReference       = errors.New("malformed reference")
	ErrMissingMetadata          = errors.New("missing metadata")
	ErrUnresolvedReference      = errors.New("unresolved reference")
	ErrUnknownParameterLocation = errors.New("unknown parameter location")
	ErrUnknownSchemaShape       = errors.New("unknown schema shape")
	ErrUnknownVerb              = errors.New("unknown verb")
	ErrGenericShapeMismatch     = errors.New("generic shape mismatch")
	ErrBannedNamespace          = errors.New("banned namespace")
)

// BannedNamespace is one namespace group rejected by the validator.
type BannedNamespace struct {
	Path       string
	Types      []TypeRef
	Dependents []TypeRef // types elsewhere with a property referencing Types
}

// BannedNamespaceError reports every banned namespace found in one run.
type BannedNamespaceError struct {
	Namespaces []BannedNamespace
}

func (e *BannedNamespaceError) Error() string {
	var errs []error
	for _, ns := range e.Namespaces {
		errs = append(errs, fmt.Errorf("namespace %s is banned: types [%s], referenced by [%s]",
			ns.Path, joinRefs(ns.Types), joinRefs(ns.Dependents)))
	}
	return errors.Join(errs...).Error()
}

func (e *BannedNamespaceError) Unwrap() error { return ErrBannedNamespace }

func joinRefs(refs []TypeRef) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
