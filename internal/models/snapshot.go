package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// GuildRef is a guild as it appears inside a snapshot.
type GuildRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tag  string `json:"tag"`
}

// TeamStanding is one team of a tier with its guilds grouped by normalized
// first letter.
type TeamStanding struct {
	TeamID   string                `json:"team_id"`
	TeamName string                `json:"team_name"`
	Color    Color                 `json:"color"`
	Score    int                   `json:"score"`
	Guilds   map[string][]GuildRef `json:"guilds"`
}

// Snapshot is the denormalized standings hierarchy served to readers. It is
// rebuilt wholesale after every completed sync cycle and never mutated in
// place, so readers always observe a value produced by one complete cycle.
type Snapshot map[int][]TeamStanding

// Checksum returns a hex SHA-256 over the canonical JSON encoding.
// encoding/json sorts map keys, and the team lists are produced in
// deterministic order by the aggregation query, so equal hierarchies always
// hash identically. Used both for change detection and as an ETag.
func (s Snapshot) Checksum() string {
	blob, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}

// Equal reports whether two snapshots describe the same hierarchy.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	return s.Checksum() == other.Checksum()
}
