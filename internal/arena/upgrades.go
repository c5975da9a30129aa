package arena

import "github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/protocol"

// UpgradeDef is a fixed catalog entry for a purchasable guild upgrade.
// Level N costs CostPerLevel*N; each level adds ValuePerLevel to Stat
// for every member.
type UpgradeDef struct {
	Key           string
	Name          string
	Icon          string
	Description   string
	MaxLevel      int
	CostPerLevel  int
	Stat          string
	ValuePerLevel int
}

// upgradeCatalog is immutable server configuration, shared by every
// guild. Order matters only for display.
var upgradeCatalog = []UpgradeDef{
	{
		Key:           "armory",
		Name:          "Guild Armory",
		Icon:          "⚔️",
		Description:   "Forged blades for every member.",
		MaxLevel:      5,
		CostPerLevel:  200,
		Stat:          "str",
		ValuePerLevel: 2,
	},
	{
		Key:           "training_yard",
		Name:          "Training Yard",
		Icon:          "🏹",
		Description:   "Footwork drills sharpen reflexes.",
		MaxLevel:      5,
		CostPerLevel:  200,
		Stat:          "dex",
		ValuePerLevel: 2,
	},
	{
		Key:           "arcane_library",
		Name:          "Arcane Library",
		Icon:          "📚",
		Description:   "Forbidden tomes deepen the mind.",
		MaxLevel:      5,
		CostPerLevel:  200,
		Stat:          "int",
		ValuePerLevel: 2,
	},
	{
		Key:           "shrine_of_vitality",
		Name:          "Shrine of Vitality",
		Icon:          "⛲",
		Description:   "A blessing of endurance for the whole guild.",
		MaxLevel:      5,
		CostPerLevel:  300,
		Stat:          "hp",
		ValuePerLevel: 10,
	},
	{
		Key:           "fortune_totem",
		Name:          "Fortune Totem",
		Icon:          "🍀",
		Description:   "Fate leans a little in your favor.",
		MaxLevel:      3,
		CostPerLevel:  400,
		Stat:          "lck",
		ValuePerLevel: 1,
	},
}

func upgradeByKey(key string) (UpgradeDef, bool) {
	for _, def := range upgradeCatalog {
		if def.Key == key {
			return def, true
		}
	}
	return UpgradeDef{}, false
}

// guildBonuses aggregates purchased upgrade levels into per-stat bonuses.
func guildBonuses(levels map[string]int) map[string]int {
	bonuses := make(map[string]int)
	for key, level := range levels {
		def, ok := upgradeByKey(key)
		if !ok || level <= 0 {
			continue
		}
		bonuses[def.Stat] += level * def.ValuePerLevel
	}
	return bonuses
}

// UpgradeCatalogInfo projects the immutable catalog for clients.
func UpgradeCatalogInfo() []protocol.GuildUpgradeInfo {
	out := make([]protocol.GuildUpgradeInfo, 0, len(upgradeCatalog))
	for _, def := range upgradeCatalog {
		out = append(out, protocol.GuildUpgradeInfo{
			Key:           def.Key,
			Name:          def.Name,
			Icon:          def.Icon,
			Description:   def.Description,
			MaxLevel:      def.MaxLevel,
			CostPerLevel:  def.CostPerLevel,
			Stat:          def.Stat,
			ValuePerLevel: def.ValuePerLevel,
		})
	}
	return out
}
