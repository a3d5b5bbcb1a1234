package models

import (
	"fmt"
	"time"
)

// Color identifies one of the three sides of a tier.
type Color string

const (
	ColorRed   Color = "red"
	ColorBlue  Color = "blue"
	ColorGreen Color = "green"
)

// Colors lists the sides in their canonical display order.
var Colors = []Color{ColorRed, ColorBlue, ColorGreen}

// Tier bounds for EU WvW.
const (
	MinTier = 1
	MaxTier = 5
)

// ValidateTier checks that tier is within the EU bracket range.
func ValidateTier(tier int) error {
	if tier < MinTier || tier > MaxTier {
		return fmt.Errorf("tier out of range [%d,%d]: %d", MinTier, MaxTier, tier)
	}
	return nil
}

// MatchupRow is one stored (tier, color) standing.
type MatchupRow struct {
	Tier      int       `db:"tier"`
	Color     Color     `db:"color"`
	TeamID    string    `db:"team_id"`
	Score     int       `db:"score"`
	UpdatedAt time.Time `db:"updated_at"`
}

// MatchupEntry is one side of a fetched tier matchup.
type MatchupEntry struct {
	TeamID string `json:"team_id"`
	Score  int    `json:"score"`
}

// TierMatchup holds the three sides of a tier as returned by the fetch
// layer, keyed by color. The store replaces all three rows of a tier with
// this in one transaction.
type TierMatchup map[Color]MatchupEntry
