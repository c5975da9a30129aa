package arena

import (
	"math/rand"
	"testing"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func warrior(str, dex, lck, hp int) *Fighter {
	return &Fighter{
		Name:      "Test",
		Class:     ClassWarrior,
		Level:     1,
		Stats:     Stats{Str: str, Dex: dex, Int: 1, HP: hp, Lck: lck},
		CurrentHP: hp,
		MaxHP:     hp,
		Arena:     ArenaRecord{Rating: defaultRating},
	}
}

func TestEloEqualRatings(t *testing.T) {
	win, lose := eloDelta(1000, 1000)
	if win != 20 || lose != -20 {
		t.Fatalf("expected +20/-20 at equal ratings, got %d/%d", win, lose)
	}
}

func TestEloFavorsUnderdog(t *testing.T) {
	win, lose := eloDelta(1000, 1400)
	if win <= 20 {
		t.Fatalf("underdog winner should gain more than 20, got %d", win)
	}
	if lose >= -20 {
		t.Fatalf("favored loser should drop more than 20, got %d", lose)
	}
	if win < 0 || lose > 0 {
		t.Fatalf("winner delta must be non-negative and loser non-positive, got %d/%d", win, lose)
	}
}

func TestDamageFloor(t *testing.T) {
	rng := testRNG()
	weakling := warrior(0, 0, 0, 50)
	weakling.Level = 1
	tank := warrior(500, 500, 0, 500)
	for i := 0; i < 100; i++ {
		tank.CurrentHP = tank.MaxHP
		res := resolveAttack(weakling, tank, rng)
		if res.Damage < 1 {
			t.Fatalf("attack %d dealt %d damage, want >= 1", i, res.Damage)
		}
	}
}

func TestRollDamageNeverBelowOne(t *testing.T) {
	rng := testRNG()
	f := warrior(-10, -10, 0, 50)
	for i := 0; i < 100; i++ {
		if dmg := rollDamage(f, rng); dmg < 1 {
			t.Fatalf("rolled %d, want >= 1", dmg)
		}
	}
}

func TestDamageReductionCaps(t *testing.T) {
	cases := []struct {
		class string
		limit float64
	}{
		{ClassWarrior, 60},
		{ClassMage, 30},
		{ClassRogue, 40},
	}
	for _, tc := range cases {
		f := &Fighter{Class: tc.class, Level: 99, Stats: Stats{Str: 999, Dex: 999, Int: 999}}
		if got := damageReduction(f); got != tc.limit {
			t.Fatalf("%s reduction = %v, want cap %v", tc.class, got, tc.limit)
		}
	}
}

func TestCritChanceCapped(t *testing.T) {
	rng := testRNG()
	f := warrior(1, 1, 1000, 50)
	missed := false
	for i := 0; i < 1000; i++ {
		if !rollCrit(f, rng) {
			missed = true
			break
		}
	}
	if !missed {
		t.Fatalf("crit chance should cap at 60%%, but every roll crit")
	}
}

func TestCurrentHPFloorsAtZero(t *testing.T) {
	rng := testRNG()
	giant := warrior(1000, 100, 0, 500)
	victim := warrior(1, 1, 0, 5)
	resolveAttack(giant, victim, rng)
	if victim.CurrentHP != 0 {
		t.Fatalf("defender HP = %d, want 0", victim.CurrentHP)
	}
}

func TestBattleRewards(t *testing.T) {
	gold, xp := battleRewards(1, 20)
	if gold != 90 {
		t.Fatalf("gold = %d, want 90", gold)
	}
	if xp != 73 {
		t.Fatalf("xp = %d, want 73", xp)
	}
	// Reward magnitude ignores the delta sign.
	if g2, _ := battleRewards(1, -20); g2 != gold {
		t.Fatalf("gold for negative delta = %d, want %d", g2, gold)
	}
}
