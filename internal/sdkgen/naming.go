package sdkgen

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// camelCase lowercases the first character, leaving the rest untouched:
// "UserId" becomes "userId".
func camelCase(s string) string {
	return mapFirst(s, cases.Lower(language.Und))
}

// pascalCase uppercases the first character: "getFoo" becomes "GetFoo".
func pascalCase(s string) string {
	return mapFirst(s, cases.Upper(language.Und))
}

// A Caser is stateful, so callers pass a fresh one.
func mapFirst(s string, c cases.Caser) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return c.String(s[:size]) + s[size:]
}
