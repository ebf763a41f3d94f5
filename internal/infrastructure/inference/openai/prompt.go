package openai

import (
	"strings"

	"github.com/comexkit/tradedocs/internal/core/domain"
)

// buildExtractionPrompt asks for a flat JSON object covering exactly the
// pending keys, with empty strings for anything the model cannot find.
func buildExtractionPrompt(sample string, keys []domain.Field) string {
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, string(key))
	}

	var b strings.Builder
	b.WriteString("You extract structured data from international trade documents ")
	b.WriteString("(commercial invoices, packing lists, bills of lading).\n")
	b.WriteString("Return a single JSON object with exactly these keys:\n")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString("\nEvery value must be a string copied from the document. ")
	b.WriteString("Use an empty string when the document does not contain the value. ")
	b.WriteString("Do not invent values and do not add keys.\n\nDocument text:\n")
	b.WriteString(sample)
	return b.String()
}
