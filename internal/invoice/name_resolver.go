package invoice

import (
	"strings"
	"unicode/utf8"

	"github.com/yfgao/invoice-extract/internal/models"
	"github.com/yfgao/invoice-extract/internal/patterns"
)

// ResolveName derives a person name from an invoice filename. It is a total
// function: the ordered filename patterns are tried first, then the longest
// 2-4 ideograph run anywhere in the name, and finally the unknown sentinel.
func ResolveName(filename string) string {
	for _, p := range patterns.NamePatterns {
		m := p.Expr.FindStringSubmatch(filename)
		if m == nil {
			continue
		}
		name := m[1]
		if n := utf8.RuneCountInString(name); n >= 2 && n <= 4 {
			return name
		}
	}

	// Fallback: longest ideograph run in the extension-stripped name.
	// Equal-length runs tie-break on first occurrence.
	base := strings.TrimSuffix(filename, ".pdf")
	longest := ""
	for _, run := range patterns.IdeographRun.FindAllString(base, -1) {
		if utf8.RuneCountInString(run) > utf8.RuneCountInString(longest) {
			longest = run
		}
	}
	if longest != "" {
		return longest
	}
	return models.UnknownName
}
