// Package langcode normalises locale directory names into the language
// codes translation providers expect, and resolves them against a
// provider's supported-language table.
package langcode

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// aliases maps directory-derived codes (canonical spelling) to the code
// providers know them by.
var aliases = map[string]string{
	"zh-Hans": "zh-CN",
	"zh-CN":   "zh-CN",
	"zh":      "zh-CN",
	"zh-Hant": "zh-TW",
	"zh-TW":   "zh-TW",
	"he":      "iw",
	"nb":      "no",
}

// Canonical rewrites a locale code to "ll-RR" form: underscores become
// dashes, the language part is lower case, a two letter region is upper
// case and a four letter script is title case.
func Canonical(code string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	for i := 1; i < len(parts); i++ {
		switch len(parts[i]) {
		case 4:
			parts[i] = strings.ToUpper(parts[i][:1]) + strings.ToLower(parts[i][1:])
		default:
			parts[i] = strings.ToUpper(parts[i])
		}
	}
	return strings.Join(parts, "-")
}

// Alias applies the fixed alias table. A whole-code entry wins; otherwise
// a bare-language alias is applied to the language part and the region or
// script is kept ("he_IL" becomes "iw-IL"). Codes the table does not cover
// are returned unchanged (not canonicalised) so that callers can still log
// the directory name they came from.
func Alias(code string) string {
	c := Canonical(code)
	if alias, ok := aliases[c]; ok {
		return alias
	}
	base, rest, found := strings.Cut(c, "-")
	if !found {
		return code
	}
	if alias, ok := aliases[base]; ok && !strings.Contains(alias, "-") {
		return alias + "-" + rest
	}
	return code
}

// Base returns the language part of a code ("pt" for "pt_BR").
func Base(code string) string {
	c := Canonical(code)
	if idx := strings.Index(c, "-"); idx > 0 {
		return c[:idx]
	}
	return c
}

// Equal compares two codes ignoring case and the _/- spelling.
func Equal(a, b string) bool {
	return strings.EqualFold(Canonical(a), Canonical(b))
}

// Resolve finds code in a name -> code table. An exact match wins; then a
// table entry for the base language of code is accepted. It returns the
// provider's name and spelling of the code.
func Resolve(code string, supported map[string]string) (name, providerCode string, ok bool) {
	if code == "" {
		return "", "", false
	}
	for n, c := range supported {
		if Equal(c, code) {
			return n, c, true
		}
	}
	base := Base(code)
	for n, c := range supported {
		if Equal(c, base) {
			return n, c, true
		}
	}
	return "", "", false
}

// EnglishName returns the English display name of a code, or the code
// itself when it is not a recognised language.
func EnglishName(code string) string {
	tag := language.Make(Canonical(code))
	if tag == language.Und {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}

// NativeName returns the language's name in that language (e.g. "français").
func NativeName(code string) string {
	tag := language.Make(Canonical(code))
	if tag == language.Und {
		return code
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return EnglishName(code)
}

// Table builds a name -> code table from a list of codes, naming each one
// in English. Codes sharing a display name are disambiguated with the code.
func Table(codes []string) map[string]string {
	out := make(map[string]string, len(codes))
	for _, c := range codes {
		name := EnglishName(c)
		if _, taken := out[name]; taken {
			name = name + " (" + c + ")"
		}
		out[name] = c
	}
	return out
}
