package model

// EventType is the type tag of an envelope.
type EventType string

// Supported event types.
const (
	EventPokemon  EventType = "pokemon"
	EventRaid     EventType = "raid"
	EventWeather  EventType = "weather"
	EventQuest    EventType = "quest"
	EventGym      EventType = "gym"
	EventPokestop EventType = "pokestop"
)

// EventTypes lists the event types in fetch order.
var EventTypes = []EventType{
	EventRaid, EventQuest, EventWeather, EventGym, EventPokestop, EventPokemon,
}

// Envelope is the canonical wrapper sent to subscribers.
type Envelope struct {
	Type    EventType `json:"type"`
	Message any       `json:"message"`
}

// SeenType returns the seen type of a pokemon envelope, or "" for other types.
func (e Envelope) SeenType() SeenType {
	if m, ok := e.Message.(*PokemonMessage); ok {
		return SeenType(m.SeenType)
	}
	return ""
}

// PokemonMessage is the message of a pokemon envelope.
type PokemonMessage struct {
	EncounterID       string   `json:"encounter_id"`
	PokemonID         int      `json:"pokemon_id"`
	DisplayPokemonID  *int     `json:"display_pokemon_id"`
	SpawnpointID      *int64   `json:"spawnpoint_id"`
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
	DisappearTime     int64    `json:"disappear_time"`
	Verified          bool     `json:"verified"`
	SeenType          string   `json:"seen_type"`
	CPMultiplier      *float64 `json:"cp_multiplier,omitempty"`
	PokemonLevel      *int     `json:"pokemon_level,omitempty"`
	Form              *int     `json:"form,omitempty"`
	DisplayForm       *int     `json:"display_form,omitempty"`
	Costume           *int     `json:"costume,omitempty"`
	DisplayCostume    *int     `json:"display_costume,omitempty"`
	CP                *int     `json:"cp,omitempty"`
	IndividualAttack  *int     `json:"individual_attack,omitempty"`
	IndividualDefense *int     `json:"individual_defense,omitempty"`
	IndividualStamina *int     `json:"individual_stamina,omitempty"`
	Move1             *int     `json:"move_1,omitempty"`
	Move2             *int     `json:"move_2,omitempty"`
	Height            *float64 `json:"height,omitempty"`
	Weight            *float64 `json:"weight,omitempty"`
	Gender            *int     `json:"gender,omitempty"`
	DisplayGender     *int     `json:"display_gender,omitempty"`
	Size              *int     `json:"size,omitempty"`
	Rarity            *int     `json:"rarity,omitempty"`
	BaseCatch         *float64 `json:"base_catch,omitempty"`
	GreatCatch        *float64 `json:"great_catch,omitempty"`
	UltraCatch        *float64 `json:"ultra_catch,omitempty"`
	Weather           *int     `json:"weather,omitempty"`

	// Set for sightings at a stop; name and url are sent as null when unknown.
	PokestopID   *string  `json:"pokestop_id,omitempty"`
	PokestopName **string `json:"pokestop_name,omitempty"`
	PokestopURL  **string `json:"pokestop_url,omitempty"`

	CellID     *int64       `json:"cell_id,omitempty"`
	CellCoords [][2]float64 `json:"cell_coords,omitempty"`
}

// RaidMessage is the message of a raid envelope.
type RaidMessage struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Level            int     `json:"level"`
	PokemonID        int     `json:"pokemon_id"`
	TeamID           *int    `json:"team_id"`
	CP               *int    `json:"cp"`
	Start            int64   `json:"start"`
	End              int64   `json:"end"`
	Name             *string `json:"name"`
	Evolution        *int    `json:"evolution"`
	Spawn            int64   `json:"spawn"`
	Move1            *int    `json:"move_1,omitempty"`
	Move2            *int    `json:"move_2,omitempty"`
	GymID            *string `json:"gym_id,omitempty"`
	URL              *string `json:"url,omitempty"`
	Weather          *int    `json:"weather,omitempty"`
	Form             *int    `json:"form,omitempty"`
	IsExRaidEligible *bool   `json:"is_ex_raid_eligible,omitempty"`
	IsExclusive      *bool   `json:"is_exclusive,omitempty"`
	Gender           *int    `json:"gender,omitempty"`
	Costume          *int    `json:"costume,omitempty"`
}

// WeatherMessage is the message of a weather envelope.
type WeatherMessage struct {
	S2CellID      int64        `json:"s2_cell_id"`
	Condition     int          `json:"condition"`
	AlertSeverity *int         `json:"alert_severity"`
	Day           *int         `json:"day"`
	TimeChanged   int64        `json:"time_changed"`
	Latitude      float64      `json:"latitude"`
	Longitude     float64      `json:"longitude"`
	Coords        [][2]float64 `json:"coords"`
}

// GymMessage is the message of a gym envelope.
type GymMessage struct {
	GymID            string  `json:"gym_id"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	TeamID           int     `json:"team_id"`
	Name             *string `json:"name"`
	SlotsAvailable   int     `json:"slots_available"`
	IsARScanEligible bool    `json:"is_ar_scan_eligible"`
	IsInBattle       bool    `json:"is_in_battle"`
	Description      *string `json:"description,omitempty"`
	URL              *string `json:"url,omitempty"`
	IsExRaidEligible *bool   `json:"is_ex_raid_eligible,omitempty"`
}

// PokestopMessage is the message of a pokestop envelope.
type PokestopMessage struct {
	Name                *string    `json:"name"`
	PokestopID          string     `json:"pokestop_id"`
	Latitude            float64    `json:"latitude"`
	Longitude           float64    `json:"longitude"`
	Updated             int64      `json:"updated"`
	LastModified        int64      `json:"last_modified"`
	LureExpiration      *int64     `json:"lure_expiration,omitempty"`
	LureID              *int       `json:"lure_id,omitempty"`
	URL                 *string    `json:"url,omitempty"`
	IncidentStart       *int64     `json:"incident_start,omitempty"`
	IncidentExpiration  *int64     `json:"incident_expiration,omitempty"`
	IncidentGruntType   *int       `json:"incident_grunt_type,omitempty"`
	IncidentDisplayType *int       `json:"incident_display_type,omitempty"`
	Incidents           []Incident `json:"incidents"`
}

// FlatQuestMessage is the quest message of the default flavor.
type FlatQuestMessage struct {
	PokestopID         string  `json:"pokestop_id"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	QuestType          string  `json:"quest_type"`
	QuestTypeRaw       int     `json:"quest_type_raw"`
	ItemType           string  `json:"item_type"`
	Name               *string `json:"name"`
	URL                *string `json:"url"`
	Timestamp          int64   `json:"timestamp"`
	QuestRewardType    string  `json:"quest_reward_type"`
	QuestRewardTypeRaw int     `json:"quest_reward_type_raw"`
	QuestRewardRaw     string  `json:"quest_reward_raw"`
	QuestTarget        int     `json:"quest_target"`
	PokemonID          int     `json:"pokemon_id"`
	PokemonForm        int     `json:"pokemon_form"`
	PokemonCostume     int     `json:"pokemon_costume"`
	ItemAmount         int     `json:"item_amount"`
	ItemID             int     `json:"item_id"`
	QuestTask          string  `json:"quest_task"`
	QuestCondition     string  `json:"quest_condition"`
	QuestTemplate      string  `json:"quest_template"`
	IsARScanEligible   bool    `json:"is_ar_scan_eligible"`
	QuestTitle         string  `json:"quest_title"`
	WithAR             bool    `json:"with_ar"`
}

// QuestReward is one reward of a structured quest message.
type QuestReward struct {
	Type int            `json:"type"`
	Info map[string]any `json:"info"`
}

// StructuredQuestMessage is the quest message of the structured flavor.
// It carries every field of FlatQuestMessage plus parsed conditions and rewards.
type StructuredQuestMessage struct {
	FlatQuestMessage

	Template     string           `json:"template"`
	PokestopName string           `json:"pokestop_name"`
	PokestopURL  *string          `json:"pokestop_url"`
	Conditions   []map[string]any `json:"conditions"`
	Type         int              `json:"type"`
	Rewards      []QuestReward    `json:"rewards"`
	Target       int              `json:"target"`
	Updated      int64            `json:"updated"`
}
