package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/arena"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/logging"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/protocol"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/storage"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	Hub      *arena.Hub
	Store    *storage.Store
	upgrader websocket.Upgrader
}

// NewHandler creates a new handler instance.
func NewHandler(hub *arena.Hub, store *storage.Store) *Handler {
	return &Handler{
		Hub:   hub,
		Store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS upgrades the connection and runs the session's read loop
// until the client goes away.
func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Debugf("upgrade from %s: %v", ClientIP(r), err)
		return
	}

	c := newClient(conn)
	go c.writer()
	session := h.Hub.Connect(c)

	defer func() {
		h.Hub.Disconnect(session.ID)
		c.close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			logging.Debugf("read from %s: %v", session.ID, err)
			return
		}
		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.Send("error", protocol.ErrorMsg{Message: "Malformed message!"})
			continue
		}
		h.dispatch(c, session.ID, env)
	}
}

// dispatch decodes the payload for one inbound event, validates it at
// the boundary and calls into the hub. Failures are reported only to
// the sender and never mutate state.
func (h *Handler) dispatch(c *wsClient, id string, env protocol.Envelope) {
	logging.Debugf("session %s -> %s", id, env.Type)
	switch env.Type {
	case "registerFighter":
		var m protocol.RegisterFighter
		if !decode(c, env.Data, &m) {
			return
		}
		replyErr(c, "error", h.Hub.Register(id, m))

	case "joinQueue":
		replyErr(c, "error", h.Hub.JoinQueue(id))

	case "leaveQueue":
		h.Hub.LeaveQueue(id)

	case "battleAction":
		var m protocol.BattleAction
		if !decode(c, env.Data, &m) {
			return
		}
		replyErr(c, "error", h.Hub.Action(id, m.Action))

	case "chatMessage":
		var m protocol.ChatSend
		if !decode(c, env.Data, &m) {
			return
		}
		h.Hub.Chat(id, m.Message)

	case "getLeaderboard":
		var m protocol.GetLeaderboard
		if !decode(c, env.Data, &m) {
			return
		}
		c.Send("leaderboard", h.Hub.Leaderboard(m.Limit))

	case "createGuild":
		var m protocol.CreateGuild
		if !decode(c, env.Data, &m) {
			return
		}
		replyErr(c, "guildError", h.Hub.CreateGuild(id, m))

	case "guildInvite":
		var m protocol.GuildInvite
		if !decode(c, env.Data, &m) {
			return
		}
		replyErr(c, "guildError", h.Hub.Invite(id, m.Name))

	case "guildAcceptInvite":
		var m protocol.GuildAnswerInvite
		if !decode(c, env.Data, &m) {
			return
		}
		replyErr(c, "guildError", h.Hub.AcceptInvite(id, m.Guild))

	case "guildDeclineInvite":
		var m protocol.GuildAnswerInvite
		if !decode(c, env.Data, &m) {
			return
		}
		replyErr(c, "guildError", h.Hub.DeclineInvite(id, m.Guild))

	case "leaveGuild":
		replyErr(c, "guildError", h.Hub.Leave(id))

	case "guildKickMember":
		var m protocol.GuildTarget
		if !decode(c, env.Data, &m) {
			return
		}
		replyErr(c, "guildError", h.Hub.Kick(id, m.Name))

	case "guildTransferLeadership":
		var m protocol.GuildTarget
		if !decode(c, env.Data, &m) {
			return
		}
		replyErr(c, "guildError", h.Hub.TransferLeadership(id, m.Name))

	case "guildPromoteOfficer":
		var m protocol.GuildTarget
		if !decode(c, env.Data, &m) {
			return
		}
		replyErr(c, "guildError", h.Hub.Promote(id, m.Name))

	case "guildDemoteOfficer":
		var m protocol.GuildTarget
		if !decode(c, env.Data, &m) {
			return
		}
		replyErr(c, "guildError", h.Hub.Demote(id, m.Name))

	case "guildDeposit":
		var m protocol.GuildDeposit
		if !decode(c, env.Data, &m) {
			return
		}
		replyErr(c, "guildError", h.Hub.Deposit(id, m))

	case "guildBuyUpgrade":
		var m protocol.GuildBuyUpgrade
		if !decode(c, env.Data, &m) {
			return
		}
		replyErr(c, "guildError", h.Hub.BuyUpgrade(id, m.Key))

	case "getGuildList":
		replyErr(c, "guildError", h.Hub.GuildList(id))

	case "getGuildUpgradesInfo":
		replyErr(c, "guildError", h.Hub.UpgradesInfo(id))

	case "guildChatMessage":
		var m protocol.ChatSend
		if !decode(c, env.Data, &m) {
			return
		}
		replyErr(c, "guildError", h.Hub.GuildChat(id, m.Message))

	default:
		c.Send("error", protocol.ErrorMsg{Message: "Unknown message type: " + env.Type})
	}
}

func decode(c *wsClient, data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		c.Send("error", protocol.ErrorMsg{Message: "Malformed payload!"})
		return false
	}
	return true
}

// replyErr reports a rejected operation to the sender. A disconnected
// session has nowhere to report to; anything else is a local error.
func replyErr(c *wsClient, event string, err error) {
	if err == nil || errors.Is(err, arena.ErrNoSession) {
		return
	}
	c.Send(event, protocol.ErrorMsg{Message: err.Error()})
}

// HandleHealth reports process liveness plus archive counts when a
// store is configured.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	body := map[string]any{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
		"online": h.Hub.OnlineCount(),
	}
	if h.Store != nil {
		if stats, err := h.Store.FetchStats(ctx); err == nil {
			body["archive"] = stats
		}
	}
	WriteJSON(w, http.StatusOK, body)
}

// HandleHistory returns a fighter's archived matches, newest first.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "match archive not configured"})
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	rows, err := h.Store.MatchHistory(ctx, name, limit)
	if err != nil {
		logging.Debugf("history query for %q: %v", name, err)
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "archive query failed"})
		return
	}
	WriteJSON(w, http.StatusOK, rows)
}
