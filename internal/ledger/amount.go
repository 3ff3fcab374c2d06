package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount parses a Rupiah amount as typed by an operator into whole
// Rupiah.
//
// Indonesian notation uses dots for thousands and a comma for decimals:
// "1.500.000", "Rp 1.500.000", "IDR 1.500.000,00" and "1500000" all parse to
// 1500000. Fractions of a Rupiah are rejected; negative amounts are rejected.
func ParseAmount(amountStr string) (int64, error) {
	const op = "ParseAmount"

	cleaned := strings.TrimSpace(amountStr)
	if cleaned == "" {
		return 0, fmt.Errorf("%s: empty amount", op)
	}
	if strings.HasPrefix(cleaned, "-") {
		return 0, fmt.Errorf("%s: negative amount %q", op, amountStr)
	}

	// Remove currency symbols and spaces
	upper := strings.ToUpper(cleaned)
	for _, prefix := range []string{"IDR", "RP.", "RP"} {
		if strings.HasPrefix(upper, prefix) {
			cleaned = cleaned[len(prefix):]
			break
		}
	}
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	// Decimal part after the comma must be all zeros
	if whole, frac, ok := strings.Cut(cleaned, ","); ok {
		if strings.Trim(frac, "0") != "" {
			return 0, fmt.Errorf("%s: fractional Rupiah in %q", op, amountStr)
		}
		cleaned = whole
	}

	cleaned = strings.ReplaceAll(cleaned, ".", "")
	amount, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: unable to parse amount %q: %w", op, amountStr, err)
	}
	return amount, nil
}
