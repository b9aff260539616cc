// Package questgen builds the intermediate quest record both quest webhook
// flavors are rendered from.
package questgen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"webhook_feed/internal/model"
)

// Reward type codes as stored by the scanner.
const (
	RewardExperience = 1
	RewardItem       = 2
	RewardStardust   = 3
	RewardCandy      = 4
	RewardPokemon    = 7
	RewardXLCandy    = 9
	RewardMegaEnergy = 12
)

// Record is the intermediate representation of one quest at one stop.
type Record struct {
	PokestopID         string
	Name               *string
	URL                *string
	Latitude           float64
	Longitude          float64
	Timestamp          int64
	QuestType          string
	QuestTypeRaw       int
	QuestRewardType    string
	QuestRewardTypeRaw int
	QuestRewardRaw     string
	QuestTarget        int
	QuestCondition     string
	QuestTask          string
	QuestTemplate      string
	QuestTitle         string
	QuestLayer         int
	ItemType           string
	ItemID             int
	ItemAmount         int
	PokemonID          int
	PokemonForm        int
	PokemonCostume     int
	IsARScanEligible   bool
}

var rewardNames = map[int]string{
	RewardExperience: "Experience",
	RewardItem:       "Item",
	RewardStardust:   "Stardust",
	RewardCandy:      "Candy",
	5:                "Avatar clothing",
	6:                "Quest",
	RewardPokemon:    "Pokemon",
	8:                "Pokecoin",
	RewardXLCandy:    "XL Candy",
	10:               "Level cap",
	11:               "Sticker",
	RewardMegaEnergy: "Mega Energy",
}

var itemNames = map[int]string{
	1:    "Poke Ball",
	2:    "Great Ball",
	3:    "Ultra Ball",
	101:  "Potion",
	102:  "Super Potion",
	103:  "Hyper Potion",
	104:  "Max Potion",
	201:  "Revive",
	202:  "Max Revive",
	701:  "Razz Berry",
	703:  "Nanab Berry",
	705:  "Pinap Berry",
	706:  "Golden Razz Berry",
	708:  "Silver Pinap Berry",
	1301: "Rare Candy",
}

var questTypeNames = map[int]string{
	4:  "Catch {0} Pokemon",
	5:  "Spin {0} Pokestops or Gyms",
	6:  "Hatch {0} Eggs",
	7:  "Battle in a Gym {0} times",
	8:  "Battle in {0} Raids",
	10: "Transfer {0} Pokemon",
	13: "Use {0} Berries to help catch Pokemon",
	14: "Power up Pokemon {0} times",
	15: "Evolve {0} Pokemon",
	16: "Make {0} Throws",
	17: "Earn {0} Candies walking with your buddy",
	23: "Trade {0} Pokemon",
	24: "Send {0} Gifts to friends",
	27: "Battle {0} times in the GO Battle League",
	28: "Take {0} snapshots",
	29: "Battle against {0} Team GO Rocket Grunts",
}

// ErrNoStop is returned when a quest has no stop to attach to.
var ErrNoStop = errors.New("quest without pokestop")

// Generator builds quest records.
type Generator struct{}

// New creates a Generator.
func New() *Generator {
	return &Generator{}
}

// Generate builds the record for quest q at stop.
func (g *Generator) Generate(stop model.Pokestop, q model.Quest) (Record, error) {
	if stop.ID == "" {
		return Record{}, ErrNoStop
	}

	amount := q.ItemAmount
	if q.RewardType == RewardStardust {
		amount = q.Stardust
	}

	task := q.QuestTask
	if task == "" {
		task = questTypeText(q.QuestType, q.Target)
	}

	return Record{
		PokestopID:         stop.ID,
		Name:               stop.Name,
		URL:                stop.Image,
		Latitude:           stop.Latitude,
		Longitude:          stop.Longitude,
		Timestamp:          q.Timestamp,
		QuestType:          questTypeText(q.QuestType, q.Target),
		QuestTypeRaw:       q.QuestType,
		QuestRewardType:    rewardName(q.RewardType),
		QuestRewardTypeRaw: q.RewardType,
		QuestRewardRaw:     q.QuestReward,
		QuestTarget:        q.Target,
		QuestCondition:     q.QuestCondition,
		QuestTask:          task,
		QuestTemplate:      q.QuestTemplate,
		QuestTitle:         q.QuestTitle,
		QuestLayer:         q.Layer,
		ItemType:           itemType(q.RewardType, q.ItemID),
		ItemID:             q.ItemID,
		ItemAmount:         amount,
		PokemonID:          q.PokemonID,
		PokemonForm:        q.PokemonForm,
		PokemonCostume:     q.PokemonCostume,
		IsARScanEligible:   q.IsARScanEligible,
	}, nil
}

func rewardName(rewardType int) string {
	if name, ok := rewardNames[rewardType]; ok {
		return name
	}
	return "Reward " + strconv.Itoa(rewardType)
}

func itemType(rewardType, itemID int) string {
	switch rewardType {
	case RewardItem:
		if name, ok := itemNames[itemID]; ok {
			return name
		}
		return "Item " + strconv.Itoa(itemID)
	case RewardStardust, RewardCandy, RewardPokemon, RewardXLCandy, RewardMegaEnergy:
		return rewardName(rewardType)
	default:
		return ""
	}
}

func questTypeText(questType, target int) string {
	tmpl, ok := questTypeNames[questType]
	if !ok {
		return fmt.Sprintf("Quest type %d", questType)
	}
	return strings.Replace(tmpl, "{0}", strconv.Itoa(target), 1)
}
