package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumberedOptions(t *testing.T) {
	got := FormatNumberedOptions("Votre secteur ?", []Option{
		{Label: "Secteur formel", Value: "formal"},
		{Label: "Secteur informel", Value: "informal"},
	})
	assert.Equal(t, "Votre secteur ?\n\n1. Secteur formel\n2. Secteur informel\n\nChoisissez une option :", got)
}

func TestMatchNumberToOption(t *testing.T) {
	options := []Option{{Label: "A", Value: "a"}, {Label: "B", Value: "b"}}

	assert.Equal(t, "a", MatchNumberToOption("1", options))
	assert.Equal(t, "b", MatchNumberToOption(" 2 ", options))
	assert.Equal(t, "", MatchNumberToOption("3", options))
	assert.Equal(t, "", MatchNumberToOption("premier", options))
}

func TestParseMenuSelection(t *testing.T) {
	idx, exit, ok := ParseMenuSelection("2", 3)
	assert.True(t, ok)
	assert.False(t, exit)
	assert.Equal(t, 1, idx)

	_, exit, ok = ParseMenuSelection("0", 3)
	assert.True(t, ok)
	assert.True(t, exit)

	_, _, ok = ParseMenuSelection("9", 3)
	assert.False(t, ok)

	_, _, ok = ParseMenuSelection("bonjour", 3)
	assert.False(t, ok)
}
