// Package encoding provides text conversions for emitted C source: symbol
// names, include guards and decoding of imported source files.
package encoding

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ToAlnum converts a display name into a C identifier. Accents are folded to
// their base letter, every other character outside [A-Za-z0-9] becomes '_',
// and a leading digit is prefixed with '_'. Runes listed in keep are left as is.
func ToAlnum(name string, keep ...rune) string {
	if name == "" {
		return ""
	}

	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r < 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case containsRune(keep, r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := b.String()
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

// IncludeGuard returns the guard macro for a header named after symbol,
// e.g. "spot00_scene" becomes "SPOT00_SCENE_H".
func IncludeGuard(symbol string) string {
	return cases.Upper(language.Und).String(ToAlnum(symbol)) + "_H"
}

// DecodeSource converts C source bytes to a UTF-8 string. A byte order mark
// selects UTF-16 decoding, otherwise the input is read as UTF-8 and a UTF-8
// BOM is dropped. Returns the original bytes if decoding fails.
func DecodeSource(data []byte) string {
	decoder := xunicode.BOMOverride(xunicode.UTF8.NewDecoder())
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return string(data)
	}
	return normalizeNewlines(string(result))
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func containsRune(set []rune, r rune) bool {
	for _, c := range set {
		if c == r {
			return true
		}
	}
	return false
}
