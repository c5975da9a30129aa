package arena

import (
	"errors"
	"strings"

	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/protocol"
)

var (
	ErrInvalidFighter = errors.New("invalid fighter data")
	ErrInvalidClass   = errors.New("invalid class")
)

// Stat fallbacks applied when a field is missing, zero or unparseable.
const (
	defaultStat   = 1
	defaultHP     = 50
	defaultRating = 1000
)

// coerce mirrors the lenient client-trusting registration contract:
// anything that does not parse to a usable number gets the fallback.
func coerce(n protocol.Num, fallback int) int {
	if n == 0 {
		return fallback
	}
	return int(n)
}

// newFighter validates and coerces a registration payload into a live
// Fighter. Only shape and enum membership are enforced; stat values are
// trusted at face value, and an empty stats object registers with the
// fallback values.
func newFighter(p protocol.RegisterFighter) (*Fighter, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" || p.Class == "" || int(p.Level) < 1 || p.Stats == nil {
		return nil, ErrInvalidFighter
	}
	switch p.Class {
	case ClassWarrior, ClassMage, ClassRogue:
	default:
		return nil, ErrInvalidClass
	}

	hp := coerce(p.Stats.HP, defaultHP)
	f := &Fighter{
		Name:  name,
		Class: p.Class,
		Level: int(p.Level),
		Stats: Stats{
			Str: coerce(p.Stats.Str, defaultStat),
			Dex: coerce(p.Stats.Dex, defaultStat),
			Int: coerce(p.Stats.Int, defaultStat),
			HP:  hp,
			Lck: coerce(p.Stats.Lck, defaultStat),
		},
		CurrentHP: hp,
		MaxHP:     hp,
		Arena:     ArenaRecord{Rating: defaultRating},
		Equipment: p.Equipment,
	}
	if p.Arena != nil {
		f.Arena = ArenaRecord{
			Rating: coerce(p.Arena.Rating, defaultRating),
			Wins:   int(p.Arena.Wins),
			Losses: int(p.Arena.Losses),
		}
	}
	return f, nil
}

// RankFor maps a rating onto the five cosmetic tiers.
func RankFor(rating int) protocol.Rank {
	switch {
	case rating >= 2200:
		return protocol.Rank{Name: "Legend", Icon: "🔥"}
	case rating >= 1800:
		return protocol.Rank{Name: "Diamond", Icon: "💎"}
	case rating >= 1500:
		return protocol.Rank{Name: "Gold", Icon: "🥇"}
	case rating >= 1200:
		return protocol.Rank{Name: "Silver", Icon: "🥈"}
	default:
		return protocol.Rank{Name: "Bronze", Icon: "🥉"}
	}
}

func statsBlock(s Stats) protocol.StatsBlock {
	return protocol.StatsBlock{Str: s.Str, Dex: s.Dex, Int: s.Int, HP: s.HP, Lck: s.Lck}
}

func combatantInfo(c *Combatant) protocol.CombatantInfo {
	f := c.Fighter
	return protocol.CombatantInfo{
		ID:        c.SessionID,
		Name:      f.Name,
		Class:     f.Class,
		Level:     f.Level,
		CurrentHP: f.CurrentHP,
		MaxHP:     f.MaxHP,
		Stats:     statsBlock(f.Stats),
	}
}

// publicInfoLocked builds the sanitized presence projection for one
// session. Returns false when the session has no registered fighter.
func (h *Hub) publicInfoLocked(s *Session) (protocol.PublicInfo, bool) {
	if s == nil || s.Fighter == nil {
		return protocol.PublicInfo{}, false
	}
	f := s.Fighter
	guild := ""
	if key, ok := h.memberGuild[s.ID]; ok {
		if g := h.guilds[key]; g != nil {
			guild = g.Name
		}
	}
	return protocol.PublicInfo{
		ID:       s.ID,
		Name:     f.Name,
		Class:    f.Class,
		Level:    f.Level,
		Rating:   f.Arena.Rating,
		Rank:     RankFor(f.Arena.Rating),
		Wins:     f.Arena.Wins,
		Losses:   f.Arena.Losses,
		InBattle: s.BattleID != "",
		InQueue:  h.queuedLocked(s.ID),
		Guild:    guild,
	}, true
}
