package embedding

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dardania/billscan/internal/extraction"
)

// SummaryText builds the deterministic text fed to the embedding model.
// Two extractions with identical salient fields produce byte-identical
// summaries, so their embeddings are reproducible.
func SummaryText(result *extraction.Result) string {
	parts := []string{
		fmt.Sprintf("Vendor: %s", result.VendorName),
		fmt.Sprintf("NUI: %s", orNA(result.VendorTaxID)),
		fmt.Sprintf("Bill: %s", orNA(result.BillNumber)),
		fmt.Sprintf("Date: %s", orNA(result.BillDate)),
		fmt.Sprintf("Total: %s %s", orNA(result.TotalAmount), result.Currency),
	}

	for _, item := range result.LineItems {
		parts = append(parts, fmt.Sprintf("Item: %s x%s = %s",
			item.Description,
			strconv.FormatFloat(item.Quantity, 'f', -1, 64),
			item.Amount))
	}

	return strings.Join(parts, " | ")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
