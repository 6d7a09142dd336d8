package sdkgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNamespaces(t *testing.T) {
	secret := objectType("Secret", []string{"Internal", "Auth"})
	token := stringEnum("TokenKind", []string{"Internal", "Auth"}, "A")
	user := objectType("User", []string{"Accounts"},
		Property{Name: "secret", Type: ref("Secret")},
	)
	session := objectType("Session", []string{"Accounts"},
		Property{Name: "kinds", Type: ArrayOf(ArrayOf(ref("TokenKind")))},
	)
	clean := objectType("Clean", []string{"Accounts"}, Property{Name: "name", Type: Str})
	legacy := objectType("Old", []string{"Legacy"})

	all := []*ConcreteType{secret, token, user, session, clean, legacy}
	groups := groupByNamespace(all)

	err := validateNamespaces(groups, all, []string{"Internal", "^mortar/Legacy$"})
	require.ErrorIs(t, err, ErrBannedNamespace)

	var banned *BannedNamespaceError
	require.True(t, errors.As(err, &banned))
	require.Len(t, banned.Namespaces, 2)

	auth := banned.Namespaces[0]
	assert.Equal(t, "mortar/Internal/Auth", auth.Path)
	assert.Equal(t, []TypeRef{secret.ID, token.ID}, auth.Types)
	assert.Equal(t, []TypeRef{user.ID, session.ID}, auth.Dependents)

	old := banned.Namespaces[1]
	assert.Equal(t, "mortar/Legacy", old.Path)
	assert.Empty(t, old.Dependents)

	msg := err.Error()
	assert.Contains(t, msg, "mortar/Internal/Auth")
	assert.Contains(t, msg, string(user.ID))
	assert.Contains(t, msg, "mortar/Legacy")
}

func TestValidateNamespaces_Passes(t *testing.T) {
	c := objectType("A", []string{"Public"})
	groups := groupByNamespace([]*ConcreteType{c})

	assert.NoError(t, validateNamespaces(groups, []*ConcreteType{c}, nil))
	assert.NoError(t, validateNamespaces(groups, []*ConcreteType{c}, []string{"Internal"}))
}

func TestValidateNamespaces_BadPattern(t *testing.T) {
	err := validateNamespaces(nil, nil, []string{"("})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBannedNamespace)
}
