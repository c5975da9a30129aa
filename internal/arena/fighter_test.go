package arena

import (
	"errors"
	"testing"

	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/protocol"
)

func validRegistration() protocol.RegisterFighter {
	return protocol.RegisterFighter{
		Name:  "Korgath",
		Class: ClassWarrior,
		Level: 5,
		Stats: &protocol.StatsPayload{Str: 12, Dex: 8, Int: 3, HP: 120, Lck: 4},
	}
}

func TestNewFighterFullHealth(t *testing.T) {
	f, err := newFighter(validRegistration())
	if err != nil {
		t.Fatalf("newFighter: %v", err)
	}
	if f.CurrentHP != f.MaxHP || f.MaxHP != 120 {
		t.Fatalf("expected currentHP == maxHP == 120, got %d/%d", f.CurrentHP, f.MaxHP)
	}
}

func TestNewFighterCoercesMissingStats(t *testing.T) {
	p := validRegistration()
	p.Stats = &protocol.StatsPayload{Str: 7} // everything else missing
	f, err := newFighter(p)
	if err != nil {
		t.Fatalf("newFighter: %v", err)
	}
	if f.Stats.Str != 7 || f.Stats.Dex != 1 || f.Stats.Int != 1 || f.Stats.Lck != 1 {
		t.Fatalf("bad stat coercion: %+v", f.Stats)
	}
	if f.Stats.HP != 50 || f.MaxHP != 50 {
		t.Fatalf("hp fallback = %d, want 50", f.MaxHP)
	}
}

func TestNewFighterEmptyStatsObject(t *testing.T) {
	p := validRegistration()
	p.Stats = &protocol.StatsPayload{} // "stats": {}
	f, err := newFighter(p)
	if err != nil {
		t.Fatalf("empty stats object should register with fallbacks: %v", err)
	}
	want := Stats{Str: 1, Dex: 1, Int: 1, HP: 50, Lck: 1}
	if f.Stats != want {
		t.Fatalf("fallback stats = %+v, want %+v", f.Stats, want)
	}
	if f.CurrentHP != 50 || f.MaxHP != 50 {
		t.Fatalf("hp fallback = %d/%d, want 50/50", f.CurrentHP, f.MaxHP)
	}
}

func TestNewFighterDefaultsArenaRecord(t *testing.T) {
	f, err := newFighter(validRegistration())
	if err != nil {
		t.Fatalf("newFighter: %v", err)
	}
	if f.Arena.Rating != 1000 || f.Arena.Wins != 0 || f.Arena.Losses != 0 {
		t.Fatalf("bad default arena record: %+v", f.Arena)
	}
}

func TestNewFighterKeepsClaimedRecord(t *testing.T) {
	p := validRegistration()
	p.Arena = &protocol.ArenaPayload{Rating: 1540, Wins: 12, Losses: 3}
	f, err := newFighter(p)
	if err != nil {
		t.Fatalf("newFighter: %v", err)
	}
	if f.Arena.Rating != 1540 || f.Arena.Wins != 12 || f.Arena.Losses != 3 {
		t.Fatalf("claimed record not kept: %+v", f.Arena)
	}
}

func TestNewFighterRejections(t *testing.T) {
	missingName := validRegistration()
	missingName.Name = "  "
	if _, err := newFighter(missingName); !errors.Is(err, ErrInvalidFighter) {
		t.Fatalf("expected ErrInvalidFighter for blank name, got %v", err)
	}

	badLevel := validRegistration()
	badLevel.Level = 0
	if _, err := newFighter(badLevel); !errors.Is(err, ErrInvalidFighter) {
		t.Fatalf("expected ErrInvalidFighter for level 0, got %v", err)
	}

	noStats := validRegistration()
	noStats.Stats = nil
	if _, err := newFighter(noStats); !errors.Is(err, ErrInvalidFighter) {
		t.Fatalf("expected ErrInvalidFighter for missing stats, got %v", err)
	}

	badClass := validRegistration()
	badClass.Class = "Necromancer"
	if _, err := newFighter(badClass); !errors.Is(err, ErrInvalidClass) {
		t.Fatalf("expected ErrInvalidClass, got %v", err)
	}
}

func TestRankThresholds(t *testing.T) {
	cases := []struct {
		rating int
		name   string
	}{
		{0, "Bronze"},
		{1199, "Bronze"},
		{1200, "Silver"},
		{1500, "Gold"},
		{1800, "Diamond"},
		{2200, "Legend"},
		{3000, "Legend"},
	}
	for _, tc := range cases {
		if got := RankFor(tc.rating).Name; got != tc.name {
			t.Fatalf("RankFor(%d) = %s, want %s", tc.rating, got, tc.name)
		}
	}
}
