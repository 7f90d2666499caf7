package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var machineNameStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// MachineName canonicalizes a city display name into its lookup key:
// lowercase, diacritics folded, everything but letters and digits dropped.
// "San Francisco" and "san francisco" collapse to the same key so there is
// never more than one City row per city.
func MachineName(displayName string) string {
	folded, _, err := transform.String(machineNameStripper, displayName)
	if err != nil {
		folded = displayName
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
