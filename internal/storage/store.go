package storage

import (
	"context"

	"gorm.io/gorm"

	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/protocol"
)

// Store wraps a gorm DB and archives battle results and guild treasury
// movement. A nil Store is valid and makes every method a no-op, so the
// server runs memory-only when no DATABASE_URL is configured.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store helper from a gorm DB.
func NewStore(db *gorm.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// DB exposes the underlying gorm DB instance.
func (s *Store) DB() *gorm.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// ErrNotFound is returned when a record is not found.
var ErrNotFound = gorm.ErrRecordNotFound

// RecordMatch inserts one row for a settled battle.
func (s *Store) RecordMatch(ctx context.Context, result protocol.BattleEnd) error {
	if s == nil {
		return nil
	}
	row := Match{
		BattleID:           result.BattleID,
		WinnerName:         result.WinnerName,
		LoserName:          result.LoserName,
		Reason:             result.Reason,
		Turns:              result.Turns,
		WinnerRatingChange: result.WinnerRatingChange,
		LoserRatingChange:  result.LoserRatingChange,
		WinnerNewRating:    result.WinnerNewRating,
		LoserNewRating:     result.LoserNewRating,
		GoldReward:         result.GoldReward,
		XPReward:           result.XPReward,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// RecordGuildTransaction inserts one treasury movement row.
func (s *Store) RecordGuildTransaction(ctx context.Context, guild, actor, kind string, amount int) error {
	if s == nil {
		return nil
	}
	row := GuildTransaction{
		GuildName: guild,
		ActorName: actor,
		Kind:      kind,
		Amount:    amount,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// MatchHistory fetches the most recent archived matches for a fighter.
func (s *Store) MatchHistory(ctx context.Context, name string, limit int) ([]Match, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	var rows []Match
	err := s.db.WithContext(ctx).
		Where("winner_name = ? OR loser_name = ?", name, name).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Stats aggregates archive counts for the health endpoint.
type Stats struct {
	Matches      int64 `json:"matches"`
	Transactions int64 `json:"transactions"`
}

// FetchStats counts archived rows.
func (s *Store) FetchStats(ctx context.Context) (Stats, error) {
	var stats Stats
	if s == nil {
		return stats, nil
	}
	if err := s.db.WithContext(ctx).Model(&Match{}).Count(&stats.Matches).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&GuildTransaction{}).Count(&stats.Transactions).Error; err != nil {
		return stats, err
	}
	return stats, nil
}
