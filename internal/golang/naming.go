package golang

import (
	"go/token"
	"strings"
	"unicode"
)

var commonInitialisms = map[string]bool{
	"API":  true,
	"HTTP": true,
	"ID":   true,
	"JSON": true,
	"JWT":  true,
	"OIDC": true,
	"URL":  true,
	"YAML": true,
}

func PascalCase(s string) string {
	words := splitWords(s)
	var result strings.Builder
	for _, word := range words {
		upper := strings.ToUpper(word)
		if commonInitialisms[upper] {
			result.WriteString(upper)
		} else {
			result.WriteString(capitalize(word))
		}
	}
	return result.String()
}

func SnakeCase(s string) string {
	words := splitWords(s)
	for i, word := range words {
		words[i] = strings.ToLower(word)
	}
	return strings.Join(words, "_")
}

func splitWords(s string) []string {
	var words []string
	var current strings.Builder
	var prev rune

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
			prev = r
			continue
		}

		if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}

		current.WriteRune(r)
		prev = r
	}

	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// ToGoIdentifier turns a subset name such as "v3beta" or "public-api" into
// an exported Go identifier.
func ToGoIdentifier(s string) string {
	result := PascalCase(s)
	if len(result) == 0 {
		return "X"
	}
	first := rune(result[0])
	if unicode.IsDigit(first) {
		return "X" + result
	}
	return result
}

// IsPackageName reports whether s can be used as a Go package clause.
func IsPackageName(s string) bool {
	return token.IsIdentifier(s) && s != "_" && strings.ToLower(s) == s
}
