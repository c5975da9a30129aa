package arena

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/protocol"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/pkg/utils"
)

// chatMaxLen caps global and guild chat messages.
const chatMaxLen = 200

// broadcastPlayerListLocked pushes the full presence list, sorted by
// descending rating, to every session. Also run on a timer as the
// eventual-consistency backstop for any missed incremental update.
func (h *Hub) broadcastPlayerListLocked() {
	list := make([]protocol.PublicInfo, 0, len(h.sessions))
	for _, s := range h.sessions {
		if info, ok := h.publicInfoLocked(s); ok {
			list = append(list, info)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Rating > list[j].Rating })
	h.broadcastLocked("playerList", list)
}

// Chat broadcasts a trimmed, length-capped message from a registered
// session to everyone. Unregistered senders are silently ignored.
func (h *Hub) Chat(id, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.sessions[id]
	if s == nil || s.Fighter == nil {
		return
	}
	text := utils.Truncate(strings.TrimSpace(message), chatMaxLen)
	if text == "" {
		return
	}
	h.broadcastLocked("chatMessage", protocol.ChatBroadcast{
		Name:    s.Fighter.Name,
		Class:   s.Fighter.Class,
		Level:   s.Fighter.Level,
		Message: text,
		Time:    time.Now().UnixMilli(),
	})
}

// Leaderboard answers a top-ratings query, from Redis when configured
// and from the in-memory presence table otherwise.
func (h *Hub) Leaderboard(limit int) protocol.Leaderboard {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	if h.board != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if rows, err := h.board.Top(ctx, int64(limit)); err == nil {
			entries := make([]protocol.LeaderboardEntry, 0, len(rows))
			for _, r := range rows {
				entries = append(entries, protocol.LeaderboardEntry{
					Name:   r.Name,
					Rating: r.Rating,
					Rank:   RankFor(r.Rating),
				})
			}
			return protocol.Leaderboard{Entries: entries, GeneratedAt: time.Now().UnixMilli()}
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	entries := make([]protocol.LeaderboardEntry, 0, len(h.sessions))
	for _, s := range h.sessions {
		if s.Fighter == nil {
			continue
		}
		entries = append(entries, protocol.LeaderboardEntry{
			Name:   s.Fighter.Name,
			Rating: s.Fighter.Arena.Rating,
			Rank:   RankFor(s.Fighter.Arena.Rating),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return protocol.Leaderboard{Entries: entries, GeneratedAt: time.Now().UnixMilli()}
}
