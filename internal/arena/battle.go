package arena

import (
	"context"
	"errors"
	"time"

	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/logging"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/protocol"
)

var (
	ErrNotInBattle    = errors.New("not in a battle")
	ErrBattleNotFound = errors.New("battle not found")
	ErrBattleOver     = errors.New("battle is already over")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrUnknownAction  = errors.New("unknown battle action")
)

// Action applies one battle action ("attack" or "forfeit") from the
// session holding the turn. Every rejection is local to the sender and
// leaves battle state untouched.
func (h *Hub) Action(id, action string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.sessions[id]
	if s == nil {
		return ErrNoSession
	}
	if s.BattleID == "" {
		return ErrNotInBattle
	}
	b := h.battles[s.BattleID]
	if b == nil {
		return ErrBattleNotFound
	}
	if b.Finished {
		return ErrBattleOver
	}
	if b.CurrentTurn != id {
		return ErrNotYourTurn
	}

	attacker, defender := b.combatant(id)
	switch action {
	case "attack":
		h.resolveTurnLocked(b, attacker, defender)
		return nil
	case "forfeit":
		b.Log = append(b.Log, protocol.BattleLogEntry{
			Turn:     b.Turns + 1,
			Type:     "forfeit",
			Attacker: attacker.Fighter.Name,
			Defender: defender.Fighter.Name,
			Message:  attacker.Fighter.Name + " forfeits!",
		})
		h.endBattleLocked(b, defender.SessionID, attacker.SessionID, "forfeit")
		return nil
	default:
		return ErrUnknownAction
	}
}

// resolveTurnLocked runs one attack, reports it to both sides and either
// terminates the battle or hands the turn to the defender. The turn flip
// itself is synchronous; only the turnChange notification is delayed, as
// a presentation aid for clients sequencing animations.
func (h *Hub) resolveTurnLocked(b *Battle, attacker, defender *Combatant) {
	res := resolveAttack(&attacker.Fighter, &defender.Fighter, h.rng)
	b.Turns++

	entry := protocol.BattleLogEntry{
		Turn:          b.Turns,
		Type:          "attack",
		Attacker:      attacker.Fighter.Name,
		Defender:      defender.Fighter.Name,
		Damage:        res.Damage,
		Crit:          res.Crit,
		Blocked:       res.Blocked,
		DefenderHP:    defender.Fighter.CurrentHP,
		DefenderMaxHP: defender.Fighter.MaxHP,
	}
	b.Log = append(b.Log, entry)

	update := protocol.BattleUpdate{
		BattleID: b.ID,
		Log:      entry,
		Player1:  healthState(b.P1),
		Player2:  healthState(b.P2),
		Turns:    b.Turns,
	}
	h.sendToBattleLocked(b, "battleUpdate", update)

	if defender.Fighter.CurrentHP <= 0 {
		h.endBattleLocked(b, attacker.SessionID, defender.SessionID, "defeat")
		return
	}

	b.CurrentTurn = defender.SessionID
	change := protocol.TurnChange{
		CurrentTurn:     defender.SessionID,
		CurrentTurnName: defender.Fighter.Name,
	}
	c1, c2 := h.battleConnsLocked(b)
	time.AfterFunc(h.turnDelay, func() {
		if c1 != nil {
			c1.Send("turnChange", change)
		}
		if c2 != nil {
			c2.Send("turnChange", change)
		}
	})
}

func healthState(c *Combatant) protocol.HealthState {
	return protocol.HealthState{
		Name:      c.Fighter.Name,
		CurrentHP: c.Fighter.CurrentHP,
		MaxHP:     c.Fighter.MaxHP,
	}
}

func (h *Hub) battleConnsLocked(b *Battle) (Conn, Conn) {
	var c1, c2 Conn
	if s := h.sessions[b.P1.SessionID]; s != nil {
		c1 = s.Conn
	}
	if s := h.sessions[b.P2.SessionID]; s != nil {
		c2 = s.Conn
	}
	return c1, c2
}

func (h *Hub) sendToBattleLocked(b *Battle, event string, payload any) {
	c1, c2 := h.battleConnsLocked(b)
	if c1 != nil {
		c1.Send(event, payload)
	}
	if c2 != nil {
		c2.Send(event, payload)
	}
}

// endBattleLocked settles a match: Elo update, rewards, live fighter
// mutation, per-recipient results and table cleanup. Calling it twice on
// the same battle is a no-op.
func (h *Hub) endBattleLocked(b *Battle, winnerID, loserID, reason string) {
	if b.Finished {
		return
	}
	b.Finished = true

	winner := h.sessions[winnerID]
	loser := h.sessions[loserID]

	winnerRating, loserRating := defaultRating, defaultRating
	winnerName, loserName := "Unknown", "Unknown"
	loserLevel := 1
	if winner != nil && winner.Fighter != nil {
		winnerRating = winner.Fighter.Arena.Rating
		winnerName = winner.Fighter.Name
	}
	if loser != nil && loser.Fighter != nil {
		loserRating = loser.Fighter.Arena.Rating
		loserName = loser.Fighter.Name
		loserLevel = loser.Fighter.Level
	}

	winnerChange, loserChange := eloDelta(winnerRating, loserRating)
	gold, xp := battleRewards(loserLevel, winnerChange)

	if winner != nil && winner.Fighter != nil {
		winner.Fighter.Arena.Rating = max(0, winner.Fighter.Arena.Rating+winnerChange)
		winner.Fighter.Arena.Wins++
		winner.BattleID = ""
		winnerRating = winner.Fighter.Arena.Rating
	}
	if loser != nil && loser.Fighter != nil {
		loser.Fighter.Arena.Rating = max(0, loser.Fighter.Arena.Rating+loserChange)
		loser.Fighter.Arena.Losses++
		loser.BattleID = ""
		loserRating = loser.Fighter.Arena.Rating
	}

	result := protocol.BattleEnd{
		BattleID:           b.ID,
		WinnerID:           winnerID,
		LoserID:            loserID,
		WinnerName:         winnerName,
		LoserName:          loserName,
		Reason:             reason,
		Turns:              b.Turns,
		WinnerRatingChange: winnerChange,
		LoserRatingChange:  loserChange,
		WinnerNewRating:    winnerRating,
		LoserNewRating:     loserRating,
		GoldReward:         gold,
		XPReward:           xp,
		Log:                b.Log,
	}
	logging.Eventf("BATTLE END", "%s defeats %s (%s) — +%d/%d rating",
		winnerName, loserName, reason, winnerChange, loserChange)

	if winner != nil {
		won := result
		won.YouWon = true
		winner.Conn.Send("battleEnd", won)
	}
	if loser != nil {
		lost := result
		lost.YouWon = false
		loser.Conn.Send("battleEnd", lost)
	}

	delete(h.battles, b.ID)
	h.broadcastPlayerListLocked()

	h.archiveMatch(result)
	h.publishRatings(winnerName, winnerRating, loserName, loserRating)
}

// archiveMatch records the result in the optional store off the hot path.
func (h *Hub) archiveMatch(result protocol.BattleEnd) {
	if h.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.store.RecordMatch(ctx, result); err != nil {
			logging.Eventf("STORE", "record match: %v", err)
		}
	}()
}

// publishRatings mirrors the new ratings to the optional leaderboard.
func (h *Hub) publishRatings(winnerName string, winnerRating int, loserName string, loserRating int) {
	if h.board == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if winnerName != "Unknown" {
			if err := h.board.SetRating(ctx, winnerName, winnerRating); err != nil {
				logging.Eventf("LEADERBOARD", "publish: %v", err)
				return
			}
		}
		if loserName != "Unknown" {
			if err := h.board.SetRating(ctx, loserName, loserRating); err != nil {
				logging.Eventf("LEADERBOARD", "publish: %v", err)
			}
		}
	}()
}

// sweepBattlesLocked force-ends battles past the wall-clock limit. The
// side with the higher health fraction wins; ties go to the first-listed
// combatant.
func (h *Hub) sweepBattlesLocked(now time.Time) {
	for _, b := range h.battles {
		if b.Finished || now.Sub(b.StartedAt) <= h.ttl {
			continue
		}
		b.Log = append(b.Log, protocol.BattleLogEntry{
			Turn:    b.Turns + 1,
			Type:    "timeout",
			Message: "Battle timed out!",
		})
		p1frac := float64(b.P1.Fighter.CurrentHP) / float64(b.P1.Fighter.MaxHP)
		p2frac := float64(b.P2.Fighter.CurrentHP) / float64(b.P2.Fighter.MaxHP)
		if p1frac >= p2frac {
			h.endBattleLocked(b, b.P1.SessionID, b.P2.SessionID, "timeout")
		} else {
			h.endBattleLocked(b, b.P2.SessionID, b.P1.SessionID, "timeout")
		}
	}
}
