package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultNumberPrefix = "INV"
	DefaultNumberWidth  = 5
)

// FormatInvoiceNumber renders PREFIX-NNNNN. width is a minimum: larger
// numbers widen rather than truncate.
func FormatInvoiceNumber(prefix string, n int64, width int) string {
	return fmt.Sprintf("%s-%0*d", prefix, width, n)
}

// ParseInvoiceNumber extracts the numeric part of PREFIX-NNNNN
func ParseInvoiceNumber(prefix, number string) (int64, error) {
	digits, ok := strings.CutPrefix(strings.TrimSpace(number), prefix+"-")
	if !ok {
		return 0, fmt.Errorf("invoice number %q does not start with %q", number, prefix+"-")
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invoice number %q has no numeric suffix: %w", number, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invoice number %q is negative", number)
	}
	return n, nil
}
