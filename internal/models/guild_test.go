package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizedLetter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain uppercase", "Over the Top", "O"},
		{"plain lowercase", "over the top", "O"},
		{"accented first letter", "Ôver the Top", "O"},
		{"accented lowercase", "ärger", "A"},
		{"leading digits skipped", "42nd Legion", "N"},
		{"leading punctuation skipped", "[XYZ] Raiders", "X"},
		{"leading spaces skipped", "  Quiet Ones", "Q"},
		{"non-latin script", "Драконы", "#"},
		{"no letters at all", "!!!", "#"},
		{"empty name", "", "#"},
		{"cedilla", "Çava", "C"},
		{"n with tilde", "ñoño", "N"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizedLetter(tt.input))
		})
	}
}

func TestGuildInput_ToGuild(t *testing.T) {
	input := &GuildInput{
		ID:   "4BBB52AA-D768-4FC6-8EDE-C299F2822F0F",
		Name: "Édelweiss",
		Tag:  "EDL",
	}

	guild := input.ToGuild()

	assert.Equal(t, input.ID, guild.ID)
	assert.Equal(t, "Édelweiss", guild.Name, "Display name should keep its accents")
	assert.Equal(t, "EDL", guild.Tag)
	assert.Equal(t, "E", guild.NormalizedLetter, "Grouping letter should be folded")
}
