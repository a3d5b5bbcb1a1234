package models

import (
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LetterSentinel groups guilds whose name has no latin letter to sort under.
const LetterSentinel = "#"

// Guild represents a WvW guild. Guilds are created by the team sync job the
// first time they show up in the membership map and are never renamed or
// deleted afterwards.
type Guild struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	Tag              string    `db:"tag"`
	NormalizedLetter string    `db:"normalized_letter"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// GuildInput is the shape of the GW2 guild detail endpoint.
type GuildInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tag  string `json:"tag"`
}

// ToGuild converts a GuildInput (from the API) to a Guild model, computing
// the display grouping letter at write time.
func (gi *GuildInput) ToGuild() *Guild {
	return &Guild{
		ID:               gi.ID,
		Name:             gi.Name,
		Tag:              gi.Tag,
		NormalizedLetter: NormalizedLetter(gi.Name),
	}
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizedLetter returns the first letter of name as a single uppercase
// ASCII letter, with diacritics stripped ("Ôver" and "Over" both yield "O").
// Names whose first letter is not a latin letter fall back to "#".
func NormalizedLetter(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}

	for _, r := range folded {
		if !unicode.IsLetter(r) {
			continue
		}
		switch {
		case r >= 'A' && r <= 'Z':
			return string(r)
		case r >= 'a' && r <= 'z':
			return string(unicode.ToUpper(r))
		default:
			// Non-latin script, group under the sentinel.
			return LetterSentinel
		}
	}
	return LetterSentinel
}
