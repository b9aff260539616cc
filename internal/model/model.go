// Package model defines the domain types used across the application.
package model

// SeenType identifies how a pokemon sighting was observed.
type SeenType string

// Supported seen types.
const (
	SeenEncounter     SeenType = "encounter"
	SeenWild          SeenType = "wild"
	SeenNearbyStop    SeenType = "nearby_stop"
	SeenNearbyCell    SeenType = "nearby_cell"
	SeenLureWild      SeenType = "lure_wild"
	SeenLureEncounter SeenType = "lure_encounter"
)

// SeenTypes lists every seen type in a stable order.
var SeenTypes = []SeenType{
	SeenEncounter, SeenWild, SeenNearbyStop, SeenNearbyCell, SeenLureWild, SeenLureEncounter,
}

// PokemonRow is a pokemon sighting joined with the stop it was seen at, if any.
type PokemonRow struct {
	EncounterID             uint64
	PokemonID               int
	DisplayPokemon          *int
	SpawnpointID            *int64
	Latitude                float64
	Longitude               float64
	DisappearTime           int64
	SpawnVerified           bool
	SeenType                SeenType
	CPMultiplier            *float64
	Form                    *int
	DisplayForm             *int
	Costume                 *int
	DisplayCostume          *int
	CP                      *int
	IndividualAttack        *int
	IndividualDefense       *int
	IndividualStamina       *int
	Move1                   *int
	Move2                   *int
	Height                  *float64
	Weight                  *float64
	Gender                  *int
	DisplayGender           *int
	Size                    *int
	BaseCatch               *float64
	GreatCatch              *float64
	UltraCatch              *float64
	WeatherBoostedCondition *int
	FortID                  *string
	StopName                *string
	StopURL                 *string
	CellID                  *int64
	LastModified            int64
}

// RaidRow is a raid joined with its gym details.
type RaidRow struct {
	GymID                   *string
	Level                   int
	Spawn                   int64
	Start                   int64
	End                     int64
	PokemonID               *int
	CP                      *int
	Move1                   *int
	Move2                   *int
	Form                    *int
	Costume                 *int
	Gender                  *int
	Evolution               *int
	Name                    *string
	URL                     *string
	Latitude                float64
	Longitude               float64
	TeamID                  *int
	WeatherBoostedCondition *int
	IsExclusive             *int
	IsExRaidEligible        *int
	LastScanned             int64
}

// WeatherRow is the weather of one S2 level-10 cell.
type WeatherRow struct {
	S2CellID        int64
	Latitude        *float64
	Longitude       *float64
	GameplayWeather int
	Severity        *int
	WorldTime       *int
	LastUpdated     int64
}

// GymRow is a gym joined with its details.
type GymRow struct {
	GymID            string
	Latitude         float64
	Longitude        float64
	TeamID           int
	Name             *string
	Description      *string
	URL              *string
	SlotsAvailable   int
	IsARScanEligible bool
	IsInBattle       bool
	IsExRaidEligible *bool
	LastModified     int64
}

// Incident is an active invasion at a pokestop.
type Incident struct {
	IncidentID  string `json:"incident_id"`
	Start       int64  `json:"incident_start"`
	Expiration  int64  `json:"incident_expiration"`
	DisplayType int    `json:"incident_display_type"`
	Character   int    `json:"character_display"`
}

// PokestopRow is a pokestop with its active incidents.
type PokestopRow struct {
	PokestopID          string
	Name                *string
	Image               *string
	Latitude            float64
	Longitude           float64
	LastUpdated         int64
	LastModified        int64
	ActiveFortModifier  *int
	LureExpiration      *int64
	IncidentStart       *int64
	IncidentExpiration  *int64
	IncidentGruntType   *int
	IncidentDisplayType *int
	Incidents           []Incident
}

// Pokestop is the subset of stop data a quest needs.
type Pokestop struct {
	ID        string
	Name      *string
	Image     *string
	Latitude  float64
	Longitude float64
}

// Quest is one research task stored for a pokestop layer.
// QuestCondition and QuestReward hold text as the scanner stored it,
// which uses single quotes where JSON needs double quotes.
type Quest struct {
	Layer            int
	QuestType        int
	Timestamp        int64
	Stardust         int
	PokemonID        int
	PokemonForm      int
	PokemonCostume   int
	RewardType       int
	ItemID           int
	ItemAmount       int
	Target           int
	QuestCondition   string
	QuestReward      string
	QuestTask        string
	QuestTemplate    string
	QuestTitle       string
	IsARScanEligible bool
}

// QuestRow pairs a stop with one of its quests.
type QuestRow struct {
	Stop  Pokestop
	Quest Quest
}
