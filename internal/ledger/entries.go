package ledger

import (
	"github.com/spacedlevo/betting-syndicate/internal/models"

	"gorm.io/gorm"
)

// EntryFilter scopes a ledger listing. Nil fields are not applied. The
// filter is a plain value so that callers compose predicates up front
// instead of mutating a query as they go.
type EntryFilter struct {
	SeasonID *uint
	PlayerID *uint
	Kind     *models.EntryKind
	BetID    *uint
	Limit    int
	Offset   int
}

// Entries lists ledger entries matching the filter, newest first
// (entry_date, then creation time, then id, all descending so the order is
// deterministic). It returns the page and the total match count.
func Entries(db *gorm.DB, f EntryFilter) ([]models.Entry, int64, error) {
	base := db.Model(&models.Entry{})

	if f.SeasonID != nil {
		base = base.Where("season_id = ?", *f.SeasonID)
	}
	if f.PlayerID != nil {
		base = base.Where("player_id = ?", *f.PlayerID)
	}
	if f.Kind != nil {
		base = base.Where("kind = ?", *f.Kind)
	}
	if f.BetID != nil {
		base = base.Where("bet_id = ?", *f.BetID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := base.Session(&gorm.Session{}).
		Preload("Player").
		Order("entry_date DESC, created_at DESC, id DESC")
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var entries []models.Entry
	if err := q.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ActivePlayersInSeason returns the players who are active both globally
// and in the given season, ordered by name.
func ActivePlayersInSeason(db *gorm.DB, seasonID uint) ([]models.Player, error) {
	var players []models.Player
	err := db.
		Joins("JOIN player_seasons ON player_seasons.player_id = players.id").
		Where("player_seasons.season_id = ? AND player_seasons.is_active = ?", seasonID, true).
		Where("players.is_active = ?", true).
		Order("players.name").
		Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

// CountActivePlayersInSeason counts season memberships that are active.
func CountActivePlayersInSeason(db *gorm.DB, seasonID uint) (int64, error) {
	var n int64
	err := db.Model(&models.PlayerSeason{}).
		Where("season_id = ? AND is_active = ?", seasonID, true).
		Count(&n).Error
	return n, err
}
