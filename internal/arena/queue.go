package arena

import (
	"errors"
	"time"

	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/logging"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/protocol"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/pkg/utils"
)

var (
	ErrNotRegistered  = errors.New("register your fighter first")
	ErrAlreadyInFight = errors.New("already in a battle")
	ErrAlreadyQueued  = errors.New("already in queue")
)

// JoinQueue appends the session to the matchmaking queue and immediately
// attempts a pairing pass.
func (h *Hub) JoinQueue(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.sessions[id]
	if s == nil {
		return ErrNoSession
	}
	if s.Fighter == nil {
		return ErrNotRegistered
	}
	if s.BattleID != "" {
		return ErrAlreadyInFight
	}
	if h.queuedLocked(id) {
		return ErrAlreadyQueued
	}

	h.queue = append(h.queue, id)
	logging.Eventf("QUEUE", "%s joined queue. Queue size: %d", s.Fighter.Name, len(h.queue))
	s.Conn.Send("queueJoined", protocol.QueueJoined{
		Message:  "Searching for opponent...",
		Position: len(h.queue),
	})
	h.broadcastPlayerListLocked()
	h.tryMatchLocked()
	return nil
}

// LeaveQueue removes the session from the queue; idempotent.
func (h *Hub) LeaveQueue(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromQueueLocked(id)
	logging.Eventf("QUEUE", "%s left queue. Queue size: %d", id, len(h.queue))
	if s := h.sessions[id]; s != nil {
		s.Conn.Send("queueLeft", protocol.QueueLeft{Message: "Left the queue."})
	}
	h.broadcastPlayerListLocked()
}

func (h *Hub) queuedLocked(id string) bool {
	for _, q := range h.queue {
		if q == id {
			return true
		}
	}
	return false
}

func (h *Hub) removeFromQueueLocked(id string) {
	for i, q := range h.queue {
		if q == id {
			h.queue = append(h.queue[:i], h.queue[i+1:]...)
			return
		}
	}
}

// tryMatchLocked pairs the two oldest queue entries while at least two
// remain. If one of a pair has gone invalid, the valid one returns to
// the front of the queue so the earliest waiter keeps priority.
func (h *Hub) tryMatchLocked() {
	for len(h.queue) >= 2 {
		id1, id2 := h.queue[0], h.queue[1]
		h.queue = h.queue[2:]

		s1, s2 := h.sessions[id1], h.sessions[id2]
		ok1 := s1 != nil && s1.Fighter != nil
		ok2 := s2 != nil && s2.Fighter != nil
		if !ok1 || !ok2 {
			if ok2 {
				h.queue = append([]string{id2}, h.queue...)
			}
			if ok1 {
				h.queue = append([]string{id1}, h.queue...)
			}
			continue
		}

		h.startBattleLocked(s1, s2)
	}
}

// startBattleLocked snapshots both fighters into a fresh battle and
// notifies each side. The first queued session takes the first turn.
func (h *Hub) startBattleLocked(s1, s2 *Session) {
	s1.Fighter.CurrentHP = s1.Fighter.MaxHP
	s2.Fighter.CurrentHP = s2.Fighter.MaxHP

	b := &Battle{
		ID:          "battle_" + utils.RandomHex(4),
		P1:          &Combatant{SessionID: s1.ID, Fighter: *s1.Fighter},
		P2:          &Combatant{SessionID: s2.ID, Fighter: *s2.Fighter},
		CurrentTurn: s1.ID,
		Log:         []protocol.BattleLogEntry{},
		StartedAt:   time.Now(),
	}
	h.battles[b.ID] = b
	s1.BattleID = b.ID
	s2.BattleID = b.ID

	logging.Eventf("BATTLE", "%s vs %s — Battle %s", s1.Fighter.Name, s2.Fighter.Name, b.ID)

	s1.Conn.Send("battleStart", protocol.BattleStart{
		BattleID:        b.ID,
		You:             combatantInfo(b.P1),
		Opponent:        combatantInfo(b.P2),
		CurrentTurn:     s1.ID,
		CurrentTurnName: s1.Fighter.Name,
	})
	s2.Conn.Send("battleStart", protocol.BattleStart{
		BattleID:        b.ID,
		You:             combatantInfo(b.P2),
		Opponent:        combatantInfo(b.P1),
		CurrentTurn:     s1.ID,
		CurrentTurnName: s1.Fighter.Name,
	})
	h.broadcastPlayerListLocked()
}
