package arena

import (
	"math"
	"math/rand"
)

// Elo K-factor for rating settlement.
const eloK = 40

// AttackResult describes one resolved swing.
type AttackResult struct {
	Damage  int
	Crit    bool
	Blocked int
}

// baseDamage computes the pre-variance damage of one attack from the
// attacker's class, stats and level.
func baseDamage(f *Fighter) float64 {
	s := f.Stats
	var dmg float64
	switch f.Class {
	case ClassWarrior:
		dmg = float64(s.Str)*2 + float64(s.Dex)*0.5
	case ClassMage:
		dmg = float64(s.Int)*2.2 + float64(s.Dex)*0.3
	default: // Rogue
		dmg = float64(s.Dex)*1.8 + float64(s.Str)*0.6
	}
	return dmg + float64(f.Level)*1.5
}

// rollDamage applies the ±15% variance and the floor of 1.
func rollDamage(f *Fighter, rng *rand.Rand) int {
	dmg := baseDamage(f) * (0.85 + rng.Float64()*0.3)
	if r := int(math.Round(dmg)); r > 1 {
		return r
	}
	return 1
}

// rollCrit checks the luck-driven critical chance, capped at 60%.
func rollCrit(f *Fighter, rng *rand.Rand) bool {
	chance := math.Min(60, float64(f.Stats.Lck)*2)
	return rng.Float64()*100 < chance
}

// damageReduction returns the defender's percent of incoming damage
// blocked, capped per class.
func damageReduction(f *Fighter) float64 {
	s := f.Stats
	lv := float64(f.Level)
	var def, limit float64
	switch f.Class {
	case ClassWarrior:
		def = (float64(s.Str)*0.8 + float64(s.Dex)*0.2 + lv*1.5) * 0.65
		limit = 60
	case ClassMage:
		def = (float64(s.Int)*0.3 + float64(s.Dex)*0.2 + lv*1.0) * 0.5
		limit = 30
	default: // Rogue
		def = (float64(s.Dex)*0.6 + float64(s.Str)*0.2 + lv*1.2) * 0.55
		limit = 40
	}
	return math.Min(limit, def)
}

// resolveAttack runs one full damage resolution against the defender,
// mutating its CurrentHP (floored at 0). Final damage never drops below 1.
func resolveAttack(attacker, defender *Fighter, rng *rand.Rand) AttackResult {
	dmg := rollDamage(attacker, rng)
	crit := rollCrit(attacker, rng)
	if crit {
		dmg *= 2
	}
	blocked := int(math.Round(float64(dmg) * damageReduction(defender) / 100))
	dmg -= blocked
	if dmg < 1 {
		dmg = 1
	}
	defender.CurrentHP -= dmg
	if defender.CurrentHP < 0 {
		defender.CurrentHP = 0
	}
	return AttackResult{Damage: dmg, Crit: crit, Blocked: blocked}
}

// eloDelta computes the rating changes for a decided match using the
// logistic expected-score model.
func eloDelta(winnerRating, loserRating int) (winnerChange, loserChange int) {
	expectedWin := 1 / (1 + math.Pow(10, float64(loserRating-winnerRating)/400))
	expectedLose := 1 / (1 + math.Pow(10, float64(winnerRating-loserRating)/400))
	winnerChange = int(math.Round(eloK * (1 - expectedWin)))
	loserChange = int(math.Round(eloK * (0 - expectedLose)))
	return winnerChange, loserChange
}

// battleRewards derives the gold and XP payout for the winner.
func battleRewards(loserLevel, winnerChange int) (gold, xp int) {
	delta := winnerChange
	if delta < 0 {
		delta = -delta
	}
	gold = int(math.Round(20 + float64(loserLevel)*10 + float64(delta)*3))
	xp = int(math.Round(25 + float64(loserLevel)*8 + float64(delta)*2))
	return gold, xp
}
