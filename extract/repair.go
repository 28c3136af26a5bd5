package extract

import (
	"context"
	"regexp"

	"github.com/ysmood/gson"
)

var (
	// offersObjectPattern locates JSON-object-shaped substrings whose
	// body contains an offers array, with or without quoted keys.
	offersObjectPattern = regexp.MustCompile(`\{[^{}]*"?offers"?\s*:\s*\[[^\]]*\][^{}]*\}`)

	// unquotedKeyPattern quotes bare object keys. It is a heuristic
	// substitution: string values that themselves contain "word:"
	// after a comma or brace will be corrupted. The real site's shape
	// is unknown at repair time, so this stays best-effort.
	unquotedKeyPattern = regexp.MustCompile(`([{,])\s*(\w+):`)
)

// RepairStage builds the last-resort stage: a loose scan of the raw
// markup for anything offers-shaped, with a syntax repair pass before
// decoding.
func RepairStage(html string) Stage {
	return Stage{
		Name: "repair",
		Extract: func(_ context.Context) ([]gson.JSON, bool) {
			return FromRepairedJSON(html)
		},
	}
}

// FromRepairedJSON scans raw markup for candidate substrings, repairs
// unquoted keys, and returns the offers array of the first candidate
// that decodes with a non-empty result.
func FromRepairedJSON(raw string) ([]gson.JSON, bool) {
	for _, candidate := range offersObjectPattern.FindAllString(raw, -1) {
		fixed := RepairKeys(candidate)
		j, ok := decode([]byte(fixed))
		if !ok {
			continue
		}
		v, ok := field(j, "offers")
		if !ok {
			continue
		}
		if records, ok := elements(v); ok {
			return records, true
		}
	}
	return nil, false
}

// RepairKeys quotes unquoted object keys in a JSON-like string.
func RepairKeys(s string) string {
	return unquotedKeyPattern.ReplaceAllString(s, `${1}"${2}":`)
}
