package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-00001", FormatInvoiceNumber("INV", 1, 5))
	assert.Equal(t, "INV-00043", FormatInvoiceNumber("INV", 43, 5))
	assert.Equal(t, "INV-99999", FormatInvoiceNumber("INV", 99999, 5))
	assert.Equal(t, "INV-100000", FormatInvoiceNumber("INV", 100000, 5), "width is a minimum")
}

func TestParseInvoiceNumber(t *testing.T) {
	n, err := ParseInvoiceNumber("INV", "INV-00042")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	n, err = ParseInvoiceNumber("INV", "INV-123456")
	require.NoError(t, err)
	assert.Equal(t, int64(123456), n)

	for _, bad := range []string{"", "INV-", "INV-abc", "BILL-00001", "INV00001", "INV--1"} {
		_, err := ParseInvoiceNumber("INV", bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}
