package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		1: {
			{
				TeamID:   "12015",
				TeamName: "Bava Nisos",
				Color:    ColorRed,
				Score:    120,
				Guilds: map[string][]GuildRef{
					"A": {{ID: "g1", Name: "Aurora", Tag: "AUR"}},
					"#": {{ID: "g2", Name: "!!!", Tag: "BNG"}},
				},
			},
			{
				TeamID:   "11001",
				TeamName: "Moogooloo",
				Color:    ColorBlue,
				Score:    98,
				Guilds:   map[string][]GuildRef{},
			},
		},
	}
}

func TestSnapshot_ChecksumDeterministic(t *testing.T) {
	a := sampleSnapshot()
	b := sampleSnapshot()

	assert.NotEmpty(t, a.Checksum())
	assert.Equal(t, a.Checksum(), b.Checksum(), "Identical snapshots should hash identically")
	assert.Equal(t, a.Checksum(), a.Checksum(), "Checksum should be stable across calls")
}

func TestSnapshot_ChecksumDetectsChange(t *testing.T) {
	a := sampleSnapshot()
	b := sampleSnapshot()
	b[1][0].Score = 121

	assert.NotEqual(t, a.Checksum(), b.Checksum(), "A score change should change the checksum")
}

func TestSnapshot_Equal(t *testing.T) {
	a := sampleSnapshot()
	b := sampleSnapshot()

	assert.True(t, a.Equal(b))

	b[2] = []TeamStanding{}
	assert.False(t, a.Equal(b), "Differing tier counts should not compare equal")
}

func TestValidateTier(t *testing.T) {
	for tier := MinTier; tier <= MaxTier; tier++ {
		assert.NoError(t, ValidateTier(tier))
	}
	assert.Error(t, ValidateTier(0))
	assert.Error(t, ValidateTier(6))
	assert.Error(t, ValidateTier(-1))
}
