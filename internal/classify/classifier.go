// Package classify assigns invoice documents to categories by keyword
// presence and migrates classified files into a persistent output tree.
package classify

import (
	"strings"

	"github.com/yfgao/invoice-extract/internal/patterns"
)

// Classify assigns exactly one category to the given document text. The
// category table is walked in declared order and the first keyword hit
// wins; text matching no keyword lands in the catch-all category. Matching
// is case-insensitive.
func Classify(text string) string {
	content := strings.ToLower(text)
	for _, cat := range patterns.Categories {
		if cat.Name == patterns.CatchAllCategory {
			continue
		}
		if containsAny(content, cat.Keywords) {
			return cat.Name
		}
	}
	return patterns.CatchAllCategory
}

// containsAny reports whether text contains at least one of the keywords.
// text must already be lowercased.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
