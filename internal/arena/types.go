package arena

import (
	"time"

	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/protocol"
)

// Conn is the outbound half of a client connection. Implementations must
// not block; the websocket layer backs this with a buffered channel.
type Conn interface {
	Send(event string, payload any)
}

// Fighter classes accepted at registration.
const (
	ClassWarrior = "Warrior"
	ClassMage    = "Mage"
	ClassRogue   = "Rogue"
)

// Guild roles.
const (
	RoleLeader  = "leader"
	RoleOfficer = "officer"
	RoleMember  = "member"
)

// Stats is a fighter's coerced stat bundle.
type Stats struct {
	Str int
	Dex int
	Int int
	HP  int
	Lck int
}

// ArenaRecord tracks competitive standing.
type ArenaRecord struct {
	Rating int
	Wins   int
	Losses int
}

// Fighter is a player's live combat profile, owned by the presence
// registry. Battles operate on detached copies, never on this record
// directly; only registration and battle settlement mutate it.
type Fighter struct {
	Name      string
	Class     string
	Level     int
	Stats     Stats
	CurrentHP int
	MaxHP     int
	Arena     ArenaRecord
	Equipment []string
}

// Session is one connected client. Destroyed on disconnect.
type Session struct {
	ID       string
	Conn     Conn
	Fighter  *Fighter
	BattleID string
}

// Combatant holds a battle's snapshot of a fighter, fixed at match
// start. Combat damage lands here; the live Fighter keeps evolving
// independently until settlement writes back rating and win/loss.
type Combatant struct {
	SessionID string
	Fighter   Fighter
}

// Battle is one active match. Finished is a one-way flag; a finished
// battle is removed from the hub's table immediately.
type Battle struct {
	ID          string
	P1          *Combatant
	P2          *Combatant
	CurrentTurn string
	Turns       int
	Log         []protocol.BattleLogEntry
	Finished    bool
	StartedAt   time.Time
}

func (b *Battle) combatant(sessionID string) (self, other *Combatant) {
	if b.P1.SessionID == sessionID {
		return b.P1, b.P2
	}
	return b.P2, b.P1
}

// GuildMember is a membership record. ID is rebound on reconnection by
// display-name match, so it can be stale while the member is offline.
type GuildMember struct {
	ID    string
	Name  string
	Class string
	Level int
	Role  string
}

// Guild is a persistent collective. Name (case-insensitive) and Tag are
// globally unique. Exactly one member holds RoleLeader.
type Guild struct {
	Name       string
	Tag        string
	LeaderID   string
	LeaderName string
	Members    []*GuildMember
	Treasury   int
	Upgrades   map[string]int
	Invites    []string
	CreatedAt  time.Time
}

func (g *Guild) member(sessionID string) *GuildMember {
	for _, m := range g.Members {
		if m.ID == sessionID {
			return m
		}
	}
	return nil
}

func (g *Guild) invited(sessionID string) bool {
	for _, id := range g.Invites {
		if id == sessionID {
			return true
		}
	}
	return false
}

func (g *Guild) dropInvite(sessionID string) {
	for i, id := range g.Invites {
		if id == sessionID {
			g.Invites = append(g.Invites[:i], g.Invites[i+1:]...)
			return
		}
	}
}
