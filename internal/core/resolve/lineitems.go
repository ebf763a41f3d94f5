package resolve

import (
	"regexp"
	"strings"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

const maxLineItems = 30

var (
	itemDigit  = regexp.MustCompile(`[0-9]`)
	itemQty    = regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*(pcs|kg|ctn|box|un)?\b`)
	itemAmount = regexp.MustCompile(`(\d+[.,]\d{2})\s*$`)
)

// ParseLineItems scans the normalized lines of a document for rows that
// look like itemized table entries: at least one digit, at least four
// whitespace tokens, and a trailing amount or a quantity token. At most
// maxLineItems rows are returned.
func ParseLineItems(rawText string) []domain.LineItem {
	items := make([]domain.LineItem, 0, 8)
	for _, line := range normalizedLines(rawText) {
		if !itemDigit.MatchString(line) {
			continue
		}
		if len(strings.Fields(line)) < 4 {
			continue
		}
		amount := ""
		if m := itemAmount.FindStringSubmatch(line); m != nil {
			amount = m[1]
		}
		quantity := ""
		if m := itemQty.FindStringSubmatch(line); m != nil {
			quantity = m[1]
		}
		if amount == "" && quantity == "" {
			continue
		}
		items = append(items, domain.LineItem{Line: line, Quantity: quantity, Amount: amount})
		if len(items) >= maxLineItems {
			break
		}
	}
	return items
}
