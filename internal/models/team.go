package models

import (
	"database/sql"
	"time"
)

// Team represents a WvW team. Teams are reference data seeded at startup;
// the sync jobs never create or rename them.
type Team struct {
	ID        string         `db:"id"`
	AltID     sql.NullString `db:"alt_id"`
	Name      string         `db:"name"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// TeamSeed is one entry of the built-in team catalog.
type TeamSeed struct {
	ID    string
	AltID string
	Name  string
}

// TeamCatalog lists the EU WvW teams by their canonical ID. Team 12015
// carries 12101 as an alternate ID: the matches endpoint still reports the
// old world code for it.
var TeamCatalog = []TeamSeed{
	{ID: "11001", Name: "Moogooloo"},
	{ID: "11002", Name: "Rall's Rest"},
	{ID: "11003", Name: "Domain of Torment"},
	{ID: "11004", Name: "Yohlon Haven"},
	{ID: "11005", Name: "Tombs of Drascir"},
	{ID: "11006", Name: "Hall of Judgment"},
	{ID: "11007", Name: "Throne of Balthazar"},
	{ID: "11008", Name: "Dwayna's Temple"},
	{ID: "11009", Name: "Abaddon's Prison"},
	{ID: "11010", Name: "Cathedral of Blood"},
	{ID: "11011", Name: "Lutgardis Conservatory"},
	{ID: "11012", Name: "Mosswood"},
	{ID: "12001", Name: "Skrittsburgh"},
	{ID: "12002", Name: "Fortune's Vale"},
	{ID: "12003", Name: "Silent Woods"},
	{ID: "12004", Name: "Ettin's Back"},
	{ID: "12005", Name: "Domain of Anguish"},
	{ID: "12006", Name: "Palawadan"},
	{ID: "12007", Name: "Bloodstone Gulch"},
	{ID: "12008", Name: "Frost Citadel"},
	{ID: "12009", Name: "Dragrimmar"},
	{ID: "12010", Name: "Grenth's Door"},
	{ID: "12011", Name: "Mirror of Lyssa"},
	{ID: "12012", Name: "Melandru's Dome"},
	{ID: "12013", Name: "Kormir's Library"},
	{ID: "12014", Name: "Great House Aviary"},
	{ID: "12015", AltID: "12101", Name: "Bava Nisos"},
}
