package jstransport

import (
	"strings"
	"unicode"
)

// DurableName joins parts with "-" and replaces characters NATS does not
// allow in consumer names (whitespace, ".", "*", ">") with "-".
func DurableName(parts ...string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '.' || r == '*' || r == '>' {
			return '-'
		}
		return r
	}, strings.Join(parts, "-"))
}
