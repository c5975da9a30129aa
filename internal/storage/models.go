package storage

import (
	"time"

	"github.com/google/uuid"
)

// Match archives one finished battle. In-memory battle state is the
// only authority while a match runs; rows here are write-once history.
type Match struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BattleID           string    `gorm:"index"`
	WinnerName         string
	LoserName          string
	Reason             string
	Turns              int
	WinnerRatingChange int
	LoserRatingChange  int
	WinnerNewRating    int
	LoserNewRating     int
	GoldReward         int
	XPReward           int
	CreatedAt          time.Time
}

// GuildTransaction archives treasury movement: deposits and upgrade
// purchases.
type GuildTransaction struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	GuildName string    `gorm:"index"`
	ActorName string
	Kind      string
	Amount    int
	CreatedAt time.Time
}
