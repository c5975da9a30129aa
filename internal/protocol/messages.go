package protocol

// ----- client -> server -----

// RegisterFighter carries the client's character sheet. Stats and the
// arena record are trusted after coercion; equipment is cosmetic.
type RegisterFighter struct {
	Name      string        `json:"name"`
	Class     string        `json:"class"`
	Level     Num           `json:"level"`
	Stats     *StatsPayload `json:"stats"`
	Arena     *ArenaPayload `json:"arena,omitempty"`
	Guild     string        `json:"guild,omitempty"`
	Equipment []string      `json:"equipment,omitempty"`
}

type StatsPayload struct {
	Str Num `json:"str"`
	Dex Num `json:"dex"`
	Int Num `json:"int"`
	HP  Num `json:"hp"`
	Lck Num `json:"lck"`
}

type ArenaPayload struct {
	Rating Num `json:"rating"`
	Wins   Num `json:"wins"`
	Losses Num `json:"losses"`
}

type BattleAction struct {
	Action string `json:"action"` // "attack" or "forfeit"
}

type ChatSend struct {
	Message string `json:"message"`
}

type CreateGuild struct {
	Name        string `json:"name"`
	Tag         string `json:"tag"`
	ClaimedGold int    `json:"gold"`
}

type GuildInvite struct {
	Name string `json:"name"` // target display name
}

type GuildAnswerInvite struct {
	Guild string `json:"guild"`
}

type GuildTarget struct {
	Name string `json:"name"` // member display name
}

type GuildDeposit struct {
	Amount      int `json:"amount"`
	ClaimedGold int `json:"gold"`
}

type GuildBuyUpgrade struct {
	Key string `json:"key"`
}

type GetLeaderboard struct {
	Limit int `json:"limit,omitempty"`
}

// ----- server -> client -----

type Welcome struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	OnlineCount int    `json:"onlineCount"`
}

type Registered struct {
	Message string     `json:"message"`
	Fighter PublicInfo `json:"fighter"`
}

type ErrorMsg struct {
	Message string `json:"message"`
}

type QueueJoined struct {
	Message  string `json:"message"`
	Position int    `json:"position"`
}

type QueueLeft struct {
	Message string `json:"message"`
}

// PublicInfo is the sanitized presence projection broadcast to everyone.
type PublicInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Class    string `json:"class"`
	Level    int    `json:"level"`
	Rating   int    `json:"rating"`
	Rank     Rank   `json:"rank"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	InBattle bool   `json:"inBattle"`
	InQueue  bool   `json:"inQueue"`
	Guild    string `json:"guild,omitempty"`
}

type Rank struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type CombatantInfo struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Class     string     `json:"class"`
	Level     int        `json:"level"`
	CurrentHP int        `json:"currentHP"`
	MaxHP     int        `json:"maxHP"`
	Stats     StatsBlock `json:"stats"`
}

type StatsBlock struct {
	Str int `json:"str"`
	Dex int `json:"dex"`
	Int int `json:"int"`
	HP  int `json:"hp"`
	Lck int `json:"lck"`
}

type BattleStart struct {
	BattleID        string        `json:"battleId"`
	You             CombatantInfo `json:"you"`
	Opponent        CombatantInfo `json:"opponent"`
	CurrentTurn     string        `json:"currentTurn"`
	CurrentTurnName string        `json:"currentTurnName"`
}

type BattleLogEntry struct {
	Turn          int    `json:"turn"`
	Type          string `json:"type"` // attack | forfeit | disconnect | timeout
	Attacker      string `json:"attacker,omitempty"`
	Defender      string `json:"defender,omitempty"`
	Damage        int    `json:"damage,omitempty"`
	Crit          bool   `json:"crit,omitempty"`
	Blocked       int    `json:"blocked,omitempty"`
	DefenderHP    int    `json:"defenderHP,omitempty"`
	DefenderMaxHP int    `json:"defenderMaxHP,omitempty"`
	Message       string `json:"message,omitempty"`
}

type HealthState struct {
	Name      string `json:"name"`
	CurrentHP int    `json:"currentHP"`
	MaxHP     int    `json:"maxHP"`
}

type BattleUpdate struct {
	BattleID string         `json:"battleId"`
	Log      BattleLogEntry `json:"log"`
	Player1  HealthState    `json:"player1"`
	Player2  HealthState    `json:"player2"`
	Turns    int            `json:"turns"`
}

type TurnChange struct {
	CurrentTurn     string `json:"currentTurn"`
	CurrentTurnName string `json:"currentTurnName"`
}

type BattleEnd struct {
	BattleID           string           `json:"battleId"`
	WinnerID           string           `json:"winnerId"`
	LoserID            string           `json:"loserId"`
	WinnerName         string           `json:"winnerName"`
	LoserName          string           `json:"loserName"`
	Reason             string           `json:"reason"`
	Turns              int              `json:"turns"`
	WinnerRatingChange int              `json:"winnerRatingChange"`
	LoserRatingChange  int              `json:"loserRatingChange"`
	WinnerNewRating    int              `json:"winnerNewRating"`
	LoserNewRating     int              `json:"loserNewRating"`
	GoldReward         int              `json:"goldReward"`
	XPReward           int              `json:"xpReward"`
	Log                []BattleLogEntry `json:"log"`
	YouWon             bool             `json:"youWon"`
}

type ChatBroadcast struct {
	Name    string `json:"name"`
	Class   string `json:"class"`
	Level   int    `json:"level"`
	Message string `json:"message"`
	Time    int64  `json:"time"`
}

// ----- guilds -----

type GuildMemberInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Class  string `json:"class"`
	Level  int    `json:"level"`
	Role   string `json:"role"`
	Online bool   `json:"online"`
}

// GuildState is the full guild snapshot pushed on joins, updates and
// reconnection recovery.
type GuildState struct {
	Name      string            `json:"name"`
	Tag       string            `json:"tag"`
	Leader    string            `json:"leader"`
	Members   []GuildMemberInfo `json:"members"`
	Treasury  int               `json:"treasury"`
	Upgrades  map[string]int    `json:"upgrades"`
	Bonuses   map[string]int    `json:"bonuses"`
	CreatedAt int64             `json:"createdAt"`
}

type GuildSuccess struct {
	Message string `json:"message"`
}

type GuildInviteReceived struct {
	Guild string `json:"guild"`
	Tag   string `json:"tag"`
	From  string `json:"from"`
}

type GuildListEntry struct {
	Name    string `json:"name"`
	Tag     string `json:"tag"`
	Leader  string `json:"leader"`
	Members int    `json:"members"`
}

type GuildUpgradeInfo struct {
	Key           string `json:"key"`
	Name          string `json:"name"`
	Icon          string `json:"icon"`
	Description   string `json:"description"`
	MaxLevel      int    `json:"maxLevel"`
	CostPerLevel  int    `json:"costPerLevel"`
	Stat          string `json:"stat"`
	ValuePerLevel int    `json:"valuePerLevel"`
}

type GuildDeposited struct {
	Name     string `json:"name"`
	Amount   int    `json:"amount"`
	Treasury int    `json:"treasury"`
}

type GuildUpgradeBought struct {
	Key      string         `json:"key"`
	Level    int            `json:"level"`
	Treasury int            `json:"treasury"`
	Bonuses  map[string]int `json:"bonuses"`
}

type GuildBonusUpdate struct {
	Bonuses map[string]int `json:"bonuses"`
}

type GuildChatMsg struct {
	Name    string `json:"name"`
	Class   string `json:"class"`
	Role    string `json:"role"`
	Message string `json:"message"`
	Time    int64  `json:"time"`
}

// ----- leaderboard -----

type LeaderboardEntry struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
	Rank   Rank   `json:"rank"`
}

type Leaderboard struct {
	Entries     []LeaderboardEntry `json:"entries"`
	GeneratedAt int64              `json:"generatedAt"`
}
