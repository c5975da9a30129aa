package arena

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/leaderboard"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/logging"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/protocol"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/storage"
)

// Timer and battle tuning.
const (
	presenceInterval = 5 * time.Second
	sweepInterval    = 10 * time.Second
	battleTTL        = 5 * time.Minute
	turnNotifyDelay  = 300 * time.Millisecond
)

// Hub owns every in-memory table: sessions, the matchmaking queue,
// active battles and guilds. All mutation funnels through its mutex, so
// each inbound message or timer tick runs to completion before the next
// one touches shared state.
type Hub struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	queue       []string
	battles     map[string]*Battle
	guilds      map[string]*Guild // key: lowercase guild name
	memberGuild map[string]string // session id -> guild key

	rng   *rand.Rand
	store *storage.Store
	board *leaderboard.Board

	turnDelay time.Duration
	ttl       time.Duration
	quit      chan struct{}
	done      sync.Once
}

// ErrNoSession is returned when an operation references a session that
// has already disconnected.
var ErrNoSession = errors.New("session not found")

// NewHub creates an empty hub. Timers start with Run.
func NewHub() *Hub {
	return &Hub{
		sessions:    make(map[string]*Session),
		battles:     make(map[string]*Battle),
		guilds:      make(map[string]*Guild),
		memberGuild: make(map[string]string),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		turnDelay:   turnNotifyDelay,
		ttl:         battleTTL,
		quit:        make(chan struct{}),
	}
}

// SetStore attaches the optional match archive.
func (h *Hub) SetStore(s *storage.Store) { h.store = s }

// SetLeaderboard attaches the optional rating leaderboard.
func (h *Hub) SetLeaderboard(b *leaderboard.Board) { h.board = b }

// Run drives the presence rebroadcast and the battle timeout sweep
// until Close is called.
func (h *Hub) Run() {
	presence := time.NewTicker(presenceInterval)
	sweep := time.NewTicker(sweepInterval)
	defer presence.Stop()
	defer sweep.Stop()
	for {
		select {
		case <-h.quit:
			return
		case <-presence.C:
			h.mu.Lock()
			h.broadcastPlayerListLocked()
			h.mu.Unlock()
		case <-sweep.C:
			h.mu.Lock()
			h.sweepBattlesLocked(time.Now())
			h.mu.Unlock()
		}
	}
}

// Close stops the background timers.
func (h *Hub) Close() {
	h.done.Do(func() { close(h.quit) })
}

// Connect registers a new session for conn, greets it and refreshes the
// online count for everyone.
func (h *Hub) Connect(conn Conn) *Session {
	h.mu.Lock()
	s := &Session{ID: uuid.NewString(), Conn: conn}
	h.sessions[s.ID] = s
	count := len(h.sessions)
	h.mu.Unlock()

	logging.Eventf("CONNECT", "Player connected: %s", s.ID)
	s.Conn.Send("welcome", protocol.Welcome{
		ID:          s.ID,
		Message:     "Connected to Realm of Shadows PvP Server!",
		OnlineCount: count,
	})
	h.mu.Lock()
	h.broadcastLocked("onlineCount", count)
	h.mu.Unlock()
	return s
}

// Disconnect tears down a session: queue purge, forced battle loss,
// invite cleanup. Guild membership survives for reconnection recovery.
func (h *Hub) Disconnect(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.sessions[id]
	if s == nil {
		return
	}
	logging.Eventf("DISCONNECT", "Player disconnected: %s", id)

	h.removeFromQueueLocked(id)

	if s.BattleID != "" {
		if b := h.battles[s.BattleID]; b != nil && !b.Finished {
			name := "Player"
			if s.Fighter != nil {
				name = s.Fighter.Name
			}
			b.Log = append(b.Log, protocol.BattleLogEntry{
				Turn:    b.Turns + 1,
				Type:    "disconnect",
				Message: name + " disconnected!",
			})
			_, other := b.combatant(id)
			h.endBattleLocked(b, other.SessionID, id, "disconnect")
		}
	}

	for _, g := range h.guilds {
		g.dropInvite(id)
	}

	delete(h.sessions, id)
	h.broadcastLocked("onlineCount", len(h.sessions))
	h.broadcastPlayerListLocked()
}

// Register validates and installs a fighter profile for the session,
// fully replacing any previous one. A display name matching an existing
// guild membership rebinds that membership to this session.
func (h *Hub) Register(id string, p protocol.RegisterFighter) error {
	f, err := newFighter(p)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.sessions[id]
	if s == nil {
		return ErrNoSession
	}
	s.Fighter = f
	logging.Eventf("REGISTER", "%s (%s Lv.%d) registered from %s", f.Name, f.Class, f.Level, id)

	h.rebindGuildLocked(s)

	info, _ := h.publicInfoLocked(s)
	s.Conn.Send("registered", protocol.Registered{
		Message: "Fighter \"" + f.Name + "\" registered!",
		Fighter: info,
	})
	h.broadcastPlayerListLocked()
	return nil
}

// rebindGuildLocked re-associates a registering session with a surviving
// guild membership that carries the same display name, then pushes the
// current guild state so the client can recover.
func (h *Hub) rebindGuildLocked(s *Session) {
	for key, g := range h.guilds {
		for _, m := range g.Members {
			if !strings.EqualFold(m.Name, s.Fighter.Name) {
				continue
			}
			if m.ID != s.ID {
				delete(h.memberGuild, m.ID)
				m.ID = s.ID
			}
			m.Class = s.Fighter.Class
			m.Level = s.Fighter.Level
			if m.Role == RoleLeader {
				g.LeaderID = s.ID
				g.LeaderName = m.Name
			}
			h.memberGuild[s.ID] = key
			logging.Debugf("rebound %s to guild %s", s.Fighter.Name, g.Name)
			s.Conn.Send("guildUpdate", h.guildStateLocked(g))
			return
		}
	}
}

func (h *Hub) sessionByName(name string) *Session {
	for _, s := range h.sessions {
		if s.Fighter != nil && strings.EqualFold(s.Fighter.Name, name) {
			return s
		}
	}
	return nil
}

// broadcastLocked fans an event out to every connected session.
func (h *Hub) broadcastLocked(event string, payload any) {
	for _, s := range h.sessions {
		s.Conn.Send(event, payload)
	}
}

// OnlineCount reports the number of connected sessions.
func (h *Hub) OnlineCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
