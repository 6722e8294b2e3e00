package category

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Classify assigns a place exactly one trade label.
//
// Provider type tags are checked first in declared rule order, because they
// are more reliable than free-text matching. If no type rule fires, the
// display name is NFC-normalized (umlauts arrive decomposed from some
// sources), lowercased and scanned against the keyword rules in declared
// order. An ambiguous name that matches several rules always resolves to
// the first declared match. Falls back to the category default label.
func Classify(name string, rawTypes []string, cat Category) string {
	for _, tr := range cat.TypeRules {
		for _, t := range rawTypes {
			if t == tr.ProviderType {
				return tr.Label
			}
		}
	}

	lower := strings.ToLower(norm.NFC.String(name))
	for _, rule := range cat.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Label
			}
		}
	}

	return cat.DefaultLabel
}
