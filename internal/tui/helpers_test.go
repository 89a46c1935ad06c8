package tui

import (
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateStr(t *testing.T) {
	assert.Equal(t, "Tea", truncateStr("Tea", 10))
	assert.Equal(t, "Masala ...", truncateStr("Masala chai latte", 10))
	assert.Equal(t, "चाय", truncateStr("चाय", 3), "counts runes, not bytes")
	assert.Equal(t, "ab", truncateStr("abcdef", 2))
}

func TestParseAmount(t *testing.T) {
	d, err := parseAmount("discount", "  ")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = parseAmount("price", "12.50")
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.String())

	_, err = parseAmount("price", "twelve")
	assert.ErrorContains(t, err, "invalid price")

	_, err = parseAmount("discount", "-1")
	assert.ErrorContains(t, err, "cannot be negative")
}

func TestWeekMonday(t *testing.T) {
	friday := time.Date(2025, 3, 14, 17, 30, 0, 0, time.UTC)
	sunday := time.Date(2025, 3, 16, 9, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, monday, weekMonday(friday))
	assert.Equal(t, monday, weekMonday(sunday))
	assert.Equal(t, monday, weekMonday(monday))

	assert.Equal(t, 0, weekdayIndex(monday))
	assert.Equal(t, 4, weekdayIndex(friday))
	assert.Equal(t, 6, weekdayIndex(sunday))
}

func TestMoveFocusWraps(t *testing.T) {
	fields := []textinput.Model{textinput.New(), textinput.New(), textinput.New()}
	fields[0].Focus()

	focus, _ := moveFocus(fields, 0, -1)
	assert.Equal(t, 2, focus)
	assert.False(t, fields[0].Focused())
	assert.True(t, fields[2].Focused())

	focus, _ = moveFocus(fields, focus, 1)
	assert.Equal(t, 0, focus)
	assert.True(t, fields[0].Focused())
}
