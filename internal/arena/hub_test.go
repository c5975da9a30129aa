package arena

import (
	"sync"
	"testing"
	"time"

	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/protocol"
)

// fakeConn records every event pushed to a session. Sends can arrive
// from timer goroutines, so access is guarded.
type fakeConn struct {
	mu     sync.Mutex
	events []fakeEvent
}

type fakeEvent struct {
	typ     string
	payload any
}

func (c *fakeConn) Send(typ string, payload any) {
	c.mu.Lock()
	c.events = append(c.events, fakeEvent{typ, payload})
	c.mu.Unlock()
}

func (c *fakeConn) count(typ string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.typ == typ {
			n++
		}
	}
	return n
}

func (c *fakeConn) last(typ string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].typ == typ {
			return c.events[i].payload, true
		}
	}
	return nil, false
}

// connectFighter wires a fresh session with a registered fighter.
func connectFighter(t *testing.T, h *Hub, name string) (*Session, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	s := h.Connect(conn)
	p := validRegistration()
	p.Name = name
	if err := h.Register(s.ID, p); err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return s, conn
}

func TestConnectSendsWelcome(t *testing.T) {
	h := NewHub()
	conn := &fakeConn{}
	s := h.Connect(conn)

	payload, ok := conn.last("welcome")
	if !ok {
		t.Fatalf("no welcome event")
	}
	w := payload.(protocol.Welcome)
	if w.ID != s.ID || w.OnlineCount != 1 {
		t.Fatalf("bad welcome: %+v", w)
	}
}

func TestRegisterReplacesFighter(t *testing.T) {
	h := NewHub()
	s, conn := connectFighter(t, h, "Korgath")

	p := validRegistration()
	p.Name = "Korgath"
	p.Stats.HP = 200
	if err := h.Register(s.ID, p); err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if s.Fighter.MaxHP != 200 || s.Fighter.CurrentHP != 200 {
		t.Fatalf("re-registration did not replace fighter: %d/%d", s.Fighter.CurrentHP, s.Fighter.MaxHP)
	}
	if conn.count("registered") != 2 {
		t.Fatalf("expected 2 registered events, got %d", conn.count("registered"))
	}
}

func TestQueueRejectsDuplicatesAndUnregistered(t *testing.T) {
	h := NewHub()
	conn := &fakeConn{}
	bare := h.Connect(conn)
	if err := h.JoinQueue(bare.ID); err != ErrNotRegistered {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}

	// A lone fighter stays queued; there is nobody to pair with.
	s, _ := connectFighter(t, h, "Solo")
	if err := h.JoinQueue(s.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := h.JoinQueue(s.ID); err != ErrAlreadyQueued {
		t.Fatalf("expected ErrAlreadyQueued, got %v", err)
	}
	if len(h.queue) != 1 {
		t.Fatalf("queue length = %d, want 1", len(h.queue))
	}
}

func TestMatchmakingStartsBattleForPair(t *testing.T) {
	h := NewHub()
	s1, c1 := connectFighter(t, h, "First")
	s2, c2 := connectFighter(t, h, "Second")

	if err := h.JoinQueue(s1.ID); err != nil {
		t.Fatalf("join s1: %v", err)
	}
	if err := h.JoinQueue(s2.ID); err != nil {
		t.Fatalf("join s2: %v", err)
	}

	if c1.count("battleStart") != 1 || c2.count("battleStart") != 1 {
		t.Fatalf("both sides should get exactly one battleStart")
	}
	payload, _ := c1.last("battleStart")
	start := payload.(protocol.BattleStart)
	if start.CurrentTurn != s1.ID {
		t.Fatalf("first enqueued should hold the first turn")
	}
	if len(h.queue) != 0 {
		t.Fatalf("queue should be drained, has %d", len(h.queue))
	}
	b := h.battles[s1.BattleID]
	if b == nil || len(b.Log) != 0 {
		t.Fatalf("battle should exist with an empty log")
	}
}

func TestMatchmakingRequeuesValidEntryAtFront(t *testing.T) {
	h := NewHub()
	s1, _ := connectFighter(t, h, "Early")
	s2, _ := connectFighter(t, h, "Late")

	h.mu.Lock()
	h.queue = []string{"ghost-session", s1.ID, s2.ID}
	h.tryMatchLocked()
	h.mu.Unlock()

	if s1.BattleID == "" || s2.BattleID == "" || s1.BattleID != s2.BattleID {
		t.Fatalf("valid entries should still pair after ghost removal")
	}
	b := h.battles[s1.BattleID]
	if b.P1.SessionID != s1.ID {
		t.Fatalf("earliest valid waiter should be first-listed")
	}
}

func startTestBattle(t *testing.T) (*Hub, *Session, *Session, *fakeConn, *fakeConn) {
	t.Helper()
	h := NewHub()
	h.turnDelay = 0
	s1, c1 := connectFighter(t, h, "Alpha")
	s2, c2 := connectFighter(t, h, "Beta")
	if err := h.JoinQueue(s1.ID); err != nil {
		t.Fatalf("join s1: %v", err)
	}
	if err := h.JoinQueue(s2.ID); err != nil {
		t.Fatalf("join s2: %v", err)
	}
	return h, s1, s2, c1, c2
}

func TestTurnAlternation(t *testing.T) {
	h, s1, s2, _, _ := startTestBattle(t)
	b := h.battles[s1.BattleID]

	// Bulk up both snapshots so nobody dies mid-test.
	b.P1.Fighter.CurrentHP, b.P1.Fighter.MaxHP = 100000, 100000
	b.P2.Fighter.CurrentHP, b.P2.Fighter.MaxHP = 100000, 100000

	want := []string{s1.ID, s2.ID, s1.ID, s2.ID}
	for i, holder := range want {
		if b.CurrentTurn != holder {
			t.Fatalf("turn %d held by %s, want %s", i, b.CurrentTurn, holder)
		}
		if err := h.Action(holder, "attack"); err != nil {
			t.Fatalf("attack %d: %v", i, err)
		}
	}
}

func TestWrongTurnRejected(t *testing.T) {
	h, s1, s2, _, c2 := startTestBattle(t)
	if err := h.Action(s2.ID, "attack"); err != ErrNotYourTurn {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	// No state changed, no update was sent.
	if c2.count("battleUpdate") != 0 {
		t.Fatalf("rejected action must not produce updates")
	}
	b := h.battles[s1.BattleID]
	if b.Turns != 0 || b.CurrentTurn != s1.ID {
		t.Fatalf("rejected action mutated battle state")
	}
}

func TestForfeitEndsBattle(t *testing.T) {
	h, s1, s2, c1, c2 := startTestBattle(t)

	if err := h.Action(s1.ID, "forfeit"); err != nil {
		t.Fatalf("forfeit: %v", err)
	}
	p1, ok := c1.last("battleEnd")
	if !ok {
		t.Fatalf("forfeiter got no battleEnd")
	}
	end := p1.(protocol.BattleEnd)
	if end.Reason != "forfeit" || end.YouWon {
		t.Fatalf("forfeiter result wrong: %+v", end)
	}
	p2, _ := c2.last("battleEnd")
	if !p2.(protocol.BattleEnd).YouWon {
		t.Fatalf("opponent should have won")
	}
	if len(h.battles) != 0 {
		t.Fatalf("finished battle still in table")
	}
	if s1.Fighter.Arena.Losses != 1 || s2.Fighter.Arena.Wins != 1 {
		t.Fatalf("win/loss not applied")
	}
	if s2.Fighter.Arena.Rating != 1020 || s1.Fighter.Arena.Rating != 980 {
		t.Fatalf("ratings %d/%d, want 1020/980", s2.Fighter.Arena.Rating, s1.Fighter.Arena.Rating)
	}
}

func TestEndBattleIdempotent(t *testing.T) {
	h, s1, s2, c1, c2 := startTestBattle(t)
	b := h.battles[s1.BattleID]

	h.mu.Lock()
	h.endBattleLocked(b, s1.ID, s2.ID, "defeat")
	h.endBattleLocked(b, s1.ID, s2.ID, "defeat")
	h.mu.Unlock()

	if c1.count("battleEnd") != 1 || c2.count("battleEnd") != 1 {
		t.Fatalf("double termination leaked extra battleEnd events")
	}
	if s1.Fighter.Arena.Wins != 1 || s2.Fighter.Arena.Losses != 1 {
		t.Fatalf("double termination applied rewards twice")
	}
}

func TestDisconnectDuringBattle(t *testing.T) {
	h, s1, _, _, c2 := startTestBattle(t)

	h.Disconnect(s1.ID)

	payload, ok := c2.last("battleEnd")
	if !ok {
		t.Fatalf("survivor got no battleEnd")
	}
	end := payload.(protocol.BattleEnd)
	if end.Reason != "disconnect" || !end.YouWon {
		t.Fatalf("survivor result wrong: %+v", end)
	}
	if len(h.battles) != 0 {
		t.Fatalf("battle not cleaned up")
	}
	if h.sessions[s1.ID] != nil {
		t.Fatalf("session not removed")
	}
}

func TestTimeoutSweep(t *testing.T) {
	h, s1, _, _, c2 := startTestBattle(t)
	b := h.battles[s1.BattleID]
	b.P1.Fighter.CurrentHP = 10 // P2 has the better fraction

	h.mu.Lock()
	h.sweepBattlesLocked(b.StartedAt.Add(6 * time.Minute))
	h.mu.Unlock()

	payload, ok := c2.last("battleEnd")
	if !ok {
		t.Fatalf("no battleEnd after sweep")
	}
	end := payload.(protocol.BattleEnd)
	if end.Reason != "timeout" || !end.YouWon {
		t.Fatalf("timeout should award the higher health fraction: %+v", end)
	}
	if n := len(end.Log); n == 0 || end.Log[n-1].Type != "timeout" {
		t.Fatalf("missing timeout log entry")
	}
}

func TestTimeoutTieFavorsFirstListed(t *testing.T) {
	h, s1, _, c1, _ := startTestBattle(t)
	b := h.battles[s1.BattleID]

	h.mu.Lock()
	h.sweepBattlesLocked(b.StartedAt.Add(h.ttl + 1))
	h.mu.Unlock()

	payload, ok := c1.last("battleEnd")
	if !ok {
		t.Fatalf("no battleEnd after sweep")
	}
	if end := payload.(protocol.BattleEnd); !end.YouWon {
		t.Fatalf("equal health fractions should favor the first-listed combatant")
	}
}
