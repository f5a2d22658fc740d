package utils

import "strings"

func ToPointer[T any](value T) *T {
	return &value
}

// NormalizeSymbol trims and upper-cases a ticker so it can be used in keys and queries.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// EscapeLike escapes LIKE wildcards so s matches literally under ESCAPE '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
