package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCart_AddClampsAtZero(t *testing.T) {
	c := NewCart()

	assert.Equal(t, 1, c.Add("p1", 1))
	assert.Equal(t, 0, c.Add("p1", -5))
	assert.Equal(t, 0, c.Quantity("p1"))
	assert.True(t, c.IsEmpty())
}

func TestCart_LinesKeepInsertionOrder(t *testing.T) {
	c := NewCart()
	c.Add("b", 2)
	c.Add("a", 1)
	c.Add("c", 1)
	c.Add("c", -1)
	c.Add("b", 1)

	assert.Equal(t, []CartLine{
		{ProductID: "b", Quantity: 3},
		{ProductID: "a", Quantity: 1},
	}, c.Lines())
	assert.Equal(t, 4, c.Count())
}

func TestCart_ZeroValueAndClear(t *testing.T) {
	var c Cart
	assert.True(t, c.IsEmpty())

	c.Set("p1", 3)
	assert.False(t, c.IsEmpty())

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.Lines())
}
