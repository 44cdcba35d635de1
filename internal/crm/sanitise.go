package crm

import (
	"fmt"
	"math"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes user-supplied text before it is embedded in CRM notes
// or email bodies.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// FormatGBP renders a whole-pound sterling amount with thousands separators.
func FormatGBP(amount float64) string {
	n := int64(math.Round(amount))
	negative := n < 0
	if negative {
		n = -n
	}

	digits := fmt.Sprintf("%d", n)
	var sb strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(d)
	}
	if negative {
		return "-£" + sb.String()
	}
	return "£" + sb.String()
}
