package arena

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/logging"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/protocol"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/pkg/utils"
)

// guildCreationCost is charged against the caller's claimed gold. The
// server trusts the claimed balance; see DESIGN.md.
const guildCreationCost = 500

var (
	ErrAlreadyInGuild    = errors.New("you are already in a guild")
	ErrNoGuild           = errors.New("you are not in a guild")
	ErrGuildNameLength   = errors.New("guild name must be 3-30 characters")
	ErrGuildTagLength    = errors.New("guild tag must be 2-5 characters")
	ErrGuildNameTaken    = errors.New("guild name already taken")
	ErrGuildTagTaken     = errors.New("guild tag already taken")
	ErrNotEnoughGold     = errors.New("not enough gold")
	ErrNoPermission      = errors.New("insufficient guild rank")
	ErrTargetOffline     = errors.New("player is not online")
	ErrTargetInGuild     = errors.New("player is already in a guild")
	ErrAlreadyInvited    = errors.New("player already invited")
	ErrNotInvited        = errors.New("you were not invited to that guild")
	ErrGuildNotFound     = errors.New("guild not found")
	ErrLeaderCannotLeave = errors.New("transfer leadership before leaving")
	ErrNotAMember        = errors.New("no such guild member")
	ErrCannotTargetSelf  = errors.New("cannot target yourself")
	ErrCannotKickLeader  = errors.New("cannot kick the guild leader")
	ErrOfficerVsOfficer  = errors.New("only the leader can kick an officer")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrUnknownUpgrade    = errors.New("unknown guild upgrade")
	ErrUpgradeMaxed      = errors.New("upgrade already at max level")
)

// callerLocked resolves an operation's sender to a live, registered
// session. Guild operations never act for unregistered sessions.
func (h *Hub) callerLocked(id string) (*Session, error) {
	s := h.sessions[id]
	if s == nil {
		return nil, ErrNoSession
	}
	if s.Fighter == nil {
		return nil, ErrNotRegistered
	}
	return s, nil
}

func (h *Hub) guildOfLocked(id string) (*Guild, *GuildMember) {
	key, ok := h.memberGuild[id]
	if !ok {
		return nil, nil
	}
	g := h.guilds[key]
	if g == nil {
		return nil, nil
	}
	return g, g.member(id)
}

func guildKey(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

func (h *Hub) guildStateLocked(g *Guild) protocol.GuildState {
	members := make([]protocol.GuildMemberInfo, 0, len(g.Members))
	for _, m := range g.Members {
		_, online := h.sessions[m.ID]
		members = append(members, protocol.GuildMemberInfo{
			ID:     m.ID,
			Name:   m.Name,
			Class:  m.Class,
			Level:  m.Level,
			Role:   m.Role,
			Online: online,
		})
	}
	return protocol.GuildState{
		Name:      g.Name,
		Tag:       g.Tag,
		Leader:    g.LeaderName,
		Members:   members,
		Treasury:  g.Treasury,
		Upgrades:  g.Upgrades,
		Bonuses:   guildBonuses(g.Upgrades),
		CreatedAt: g.CreatedAt.UnixMilli(),
	}
}

// notifyGuildLocked fans an event out to every online member.
func (h *Hub) notifyGuildLocked(g *Guild, event string, payload any) {
	for _, m := range g.Members {
		if s := h.sessions[m.ID]; s != nil {
			s.Conn.Send(event, payload)
		}
	}
}

func (h *Hub) guildListLocked() []protocol.GuildListEntry {
	out := make([]protocol.GuildListEntry, 0, len(h.guilds))
	for _, g := range h.guilds {
		out = append(out, protocol.GuildListEntry{
			Name:    g.Name,
			Tag:     g.Tag,
			Leader:  g.LeaderName,
			Members: len(g.Members),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Members != out[j].Members {
			return out[i].Members > out[j].Members
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func (h *Hub) broadcastGuildListLocked() {
	h.broadcastLocked("guildListUpdate", h.guildListLocked())
}

// CreateGuild founds a guild with the caller as sole leader. The
// claimed gold balance is trusted, not verified.
func (h *Hub) CreateGuild(id string, p protocol.CreateGuild) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.callerLocked(id)
	if err != nil {
		return err
	}
	if _, ok := h.memberGuild[id]; ok {
		return ErrAlreadyInGuild
	}

	name := strings.TrimSpace(p.Name)
	tag := strings.ToUpper(strings.TrimSpace(p.Tag))
	if n := utf8.RuneCountInString(name); n < 3 || n > 30 {
		return ErrGuildNameLength
	}
	if n := utf8.RuneCountInString(tag); n < 2 || n > 5 {
		return ErrGuildTagLength
	}
	if _, exists := h.guilds[guildKey(name)]; exists {
		return ErrGuildNameTaken
	}
	for _, g := range h.guilds {
		if g.Tag == tag {
			return ErrGuildTagTaken
		}
	}
	if p.ClaimedGold < guildCreationCost {
		return fmt.Errorf("creating a guild costs %d gold", guildCreationCost)
	}

	g := &Guild{
		Name:       name,
		Tag:        tag,
		LeaderID:   id,
		LeaderName: s.Fighter.Name,
		Members: []*GuildMember{{
			ID:    id,
			Name:  s.Fighter.Name,
			Class: s.Fighter.Class,
			Level: s.Fighter.Level,
			Role:  RoleLeader,
		}},
		Upgrades:  make(map[string]int),
		CreatedAt: time.Now(),
	}
	h.guilds[guildKey(name)] = g
	h.memberGuild[id] = guildKey(name)

	logging.Eventf("GUILD", "%s founded %q [%s]", s.Fighter.Name, name, tag)
	s.Conn.Send("guildCreated", h.guildStateLocked(g))
	h.broadcastGuildListLocked()
	h.broadcastPlayerListLocked()
	return nil
}

// Invite adds an online, unguilded player to the pending-invite list.
// Leader or officer only.
func (h *Hub) Invite(id, targetName string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.callerLocked(id)
	if err != nil {
		return err
	}
	g, m := h.guildOfLocked(id)
	if g == nil {
		return ErrNoGuild
	}
	if m.Role != RoleLeader && m.Role != RoleOfficer {
		return ErrNoPermission
	}

	target := h.sessionByName(targetName)
	if target == nil {
		return ErrTargetOffline
	}
	if _, ok := h.memberGuild[target.ID]; ok {
		return ErrTargetInGuild
	}
	if g.invited(target.ID) {
		return ErrAlreadyInvited
	}

	g.Invites = append(g.Invites, target.ID)
	target.Conn.Send("guildInviteReceived", protocol.GuildInviteReceived{
		Guild: g.Name,
		Tag:   g.Tag,
		From:  s.Fighter.Name,
	})
	s.Conn.Send("guildSuccess", protocol.GuildSuccess{
		Message: targetName + " has been invited.",
	})
	return nil
}

// AcceptInvite moves the caller from a guild's invite list into its
// membership as a plain member.
func (h *Hub) AcceptInvite(id, guildName string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.callerLocked(id)
	if err != nil {
		return err
	}
	if _, ok := h.memberGuild[id]; ok {
		return ErrAlreadyInGuild
	}
	g := h.guilds[guildKey(guildName)]
	if g == nil {
		return ErrGuildNotFound
	}
	if !g.invited(id) {
		return ErrNotInvited
	}

	g.dropInvite(id)
	g.Members = append(g.Members, &GuildMember{
		ID:    id,
		Name:  s.Fighter.Name,
		Class: s.Fighter.Class,
		Level: s.Fighter.Level,
		Role:  RoleMember,
	})
	h.memberGuild[id] = guildKey(guildName)

	state := h.guildStateLocked(g)
	s.Conn.Send("guildJoined", state)
	if leader := h.sessions[g.LeaderID]; leader != nil && g.LeaderID != id {
		leader.Conn.Send("guildSuccess", protocol.GuildSuccess{
			Message: s.Fighter.Name + " joined the guild!",
		})
	}
	h.notifyGuildLocked(g, "guildUpdate", state)
	h.broadcastGuildListLocked()
	h.broadcastPlayerListLocked()
	return nil
}

// DeclineInvite removes the caller from a guild's invite list.
func (h *Hub) DeclineInvite(id, guildName string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.callerLocked(id)
	if err != nil {
		return err
	}
	g := h.guilds[guildKey(guildName)]
	if g == nil {
		return ErrGuildNotFound
	}
	if !g.invited(id) {
		return ErrNotInvited
	}
	g.dropInvite(id)
	s.Conn.Send("guildSuccess", protocol.GuildSuccess{Message: "Invite declined."})
	return nil
}

// Leave removes the caller's membership. The leader must transfer
// leadership first.
func (h *Hub) Leave(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.callerLocked(id)
	if err != nil {
		return err
	}
	g, m := h.guildOfLocked(id)
	if g == nil {
		return ErrNoGuild
	}
	if m.Role == RoleLeader {
		return ErrLeaderCannotLeave
	}

	h.removeMemberLocked(g, id)
	s.Conn.Send("guildLeft", protocol.GuildSuccess{Message: "You left " + g.Name + "."})
	h.notifyGuildLocked(g, "guildUpdate", h.guildStateLocked(g))
	h.broadcastGuildListLocked()
	h.broadcastPlayerListLocked()
	return nil
}

func (h *Hub) removeMemberLocked(g *Guild, id string) {
	for i, m := range g.Members {
		if m.ID == id {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			break
		}
	}
	delete(h.memberGuild, id)
}

// Kick removes another member. Officers cannot kick officers, and
// nobody kicks the leader.
func (h *Hub) Kick(id, targetName string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.callerLocked(id); err != nil {
		return err
	}
	g, actor := h.guildOfLocked(id)
	if g == nil {
		return ErrNoGuild
	}
	if actor.Role != RoleLeader && actor.Role != RoleOfficer {
		return ErrNoPermission
	}

	target := g.memberByName(targetName)
	if target == nil {
		return ErrNotAMember
	}
	if target.ID == id {
		return ErrCannotTargetSelf
	}
	if target.Role == RoleLeader {
		return ErrCannotKickLeader
	}
	if target.Role == RoleOfficer && actor.Role != RoleLeader {
		return ErrOfficerVsOfficer
	}

	h.removeMemberLocked(g, target.ID)
	if ts := h.sessions[target.ID]; ts != nil {
		ts.Conn.Send("guildKicked", protocol.GuildSuccess{
			Message: "You were removed from " + g.Name + ".",
		})
	}
	h.notifyGuildLocked(g, "guildUpdate", h.guildStateLocked(g))
	h.broadcastGuildListLocked()
	h.broadcastPlayerListLocked()
	return nil
}

// TransferLeadership demotes the current leader to officer and promotes
// the named member.
func (h *Hub) TransferLeadership(id, targetName string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.callerLocked(id); err != nil {
		return err
	}
	g, actor := h.guildOfLocked(id)
	if g == nil {
		return ErrNoGuild
	}
	if actor.Role != RoleLeader {
		return ErrNoPermission
	}
	target := g.memberByName(targetName)
	if target == nil {
		return ErrNotAMember
	}
	if target.ID == id {
		return ErrCannotTargetSelf
	}

	actor.Role = RoleOfficer
	target.Role = RoleLeader
	g.LeaderID = target.ID
	g.LeaderName = target.Name

	h.notifyGuildLocked(g, "guildUpdate", h.guildStateLocked(g))
	h.broadcastGuildListLocked()
	return nil
}

// Promote raises a plain member to officer. Leader only.
func (h *Hub) Promote(id, targetName string) error {
	return h.setRole(id, targetName, RoleMember, RoleOfficer)
}

// Demote lowers an officer back to member. Leader only.
func (h *Hub) Demote(id, targetName string) error {
	return h.setRole(id, targetName, RoleOfficer, RoleMember)
}

func (h *Hub) setRole(id, targetName, from, to string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.callerLocked(id); err != nil {
		return err
	}
	g, actor := h.guildOfLocked(id)
	if g == nil {
		return ErrNoGuild
	}
	if actor.Role != RoleLeader {
		return ErrNoPermission
	}
	target := g.memberByName(targetName)
	if target == nil || target.Role != from {
		return ErrNotAMember
	}

	target.Role = to
	h.notifyGuildLocked(g, "guildUpdate", h.guildStateLocked(g))
	return nil
}

// Deposit moves claimed gold into the guild treasury and tells the
// other online members.
func (h *Hub) Deposit(id string, p protocol.GuildDeposit) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.callerLocked(id)
	if err != nil {
		return err
	}
	g, _ := h.guildOfLocked(id)
	if g == nil {
		return ErrNoGuild
	}
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Amount > p.ClaimedGold {
		return ErrNotEnoughGold
	}

	g.Treasury += p.Amount
	h.notifyGuildLocked(g, "guildDeposited", protocol.GuildDeposited{
		Name:     s.Fighter.Name,
		Amount:   p.Amount,
		Treasury: g.Treasury,
	})
	h.recordTransaction(g.Name, s.Fighter.Name, "deposit", p.Amount)
	return nil
}

// BuyUpgrade spends treasury gold on the next level of a catalog
// upgrade and pushes the recomputed bonus set to every online member.
// Leader or officer only.
func (h *Hub) BuyUpgrade(id, key string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.callerLocked(id)
	if err != nil {
		return err
	}
	g, m := h.guildOfLocked(id)
	if g == nil {
		return ErrNoGuild
	}
	if m.Role != RoleLeader && m.Role != RoleOfficer {
		return ErrNoPermission
	}
	def, ok := upgradeByKey(key)
	if !ok {
		return ErrUnknownUpgrade
	}
	level := g.Upgrades[key]
	if level >= def.MaxLevel {
		return ErrUpgradeMaxed
	}
	cost := def.CostPerLevel * (level + 1)
	if g.Treasury < cost {
		return fmt.Errorf("%s level %d costs %d gold", def.Name, level+1, cost)
	}

	g.Treasury -= cost
	g.Upgrades[key] = level + 1
	bonuses := guildBonuses(g.Upgrades)

	logging.Eventf("GUILD", "%s bought %s level %d for %q", s.Fighter.Name, def.Name, level+1, g.Name)
	h.notifyGuildLocked(g, "guildUpgradeBought", protocol.GuildUpgradeBought{
		Key:      key,
		Level:    level + 1,
		Treasury: g.Treasury,
		Bonuses:  bonuses,
	})
	h.notifyGuildLocked(g, "guildBonusUpdate", protocol.GuildBonusUpdate{Bonuses: bonuses})
	h.recordTransaction(g.Name, s.Fighter.Name, "upgrade:"+key, cost)
	return nil
}

func (h *Hub) recordTransaction(guild, actor, kind string, amount int) {
	if h.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.store.RecordGuildTransaction(ctx, guild, actor, kind, amount); err != nil {
			logging.Eventf("STORE", "record transaction: %v", err)
		}
	}()
}

// GuildList sends the roster, sorted by descending member count, to the
// requesting session.
func (h *Hub) GuildList(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.sessions[id]
	if s == nil {
		return ErrNoSession
	}
	s.Conn.Send("guildListUpdate", h.guildListLocked())
	return nil
}

// UpgradesInfo sends the immutable upgrade catalog to the requester.
func (h *Hub) UpgradesInfo(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.sessions[id]
	if s == nil {
		return ErrNoSession
	}
	s.Conn.Send("guildUpgradesInfo", UpgradeCatalogInfo())
	return nil
}

// GuildChat fans a message out to every online member, sender included.
func (h *Hub) GuildChat(id, message string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.callerLocked(id)
	if err != nil {
		return err
	}
	g, m := h.guildOfLocked(id)
	if g == nil {
		return ErrNoGuild
	}
	text := utils.Truncate(strings.TrimSpace(message), chatMaxLen)
	if text == "" {
		return nil
	}
	h.notifyGuildLocked(g, "guildChatMessage", protocol.GuildChatMsg{
		Name:    s.Fighter.Name,
		Class:   s.Fighter.Class,
		Role:    m.Role,
		Message: text,
		Time:    time.Now().UnixMilli(),
	})
	return nil
}

func (g *Guild) memberByName(name string) *GuildMember {
	for _, m := range g.Members {
		if strings.EqualFold(m.Name, name) {
			return m
		}
	}
	return nil
}
