package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCart_RejectsBlankProduct(t *testing.T) {
	for _, item := range []string{":2", "", "  :1"} {
		_, err := buildCart(context.Background(), []string{item})
		assert.ErrorContains(t, err, "missing product", "item %q", item)
	}
}

func TestBuildCart_RejectsBadQuantity(t *testing.T) {
	for _, item := range []string{"tea:0", "tea:-1", "tea:two"} {
		_, err := buildCart(context.Background(), []string{item})
		assert.ErrorContains(t, err, "invalid quantity", "item %q", item)
	}
}

func TestParseMoney(t *testing.T) {
	d, err := parseMoney("discount", " 5.50 ")
	assert.NoError(t, err)
	assert.Equal(t, "5.5", d.String())

	_, err = parseMoney("discount", "-1")
	assert.ErrorContains(t, err, "cannot be negative")
}
