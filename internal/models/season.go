package models

import "time"

// Season groups all activity for a time period (e.g. "2025-2026 Season").
// Only one season should be active at a time; activating a season
// deactivates the others in the same transaction.
type Season struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:100;not null;uniqueIndex" json:"name"`
	StartDate time.Time  `gorm:"not null" json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
}

// Frozen reports whether the season's end date has passed as of today.
// A frozen season no longer accepts new bets or contributions; this is
// enforced by the handlers, not by the ledger itself.
func (s *Season) Frozen(today time.Time) bool {
	if s == nil || s.EndDate == nil {
		return false
	}
	y1, m1, d1 := today.Date()
	y2, m2, d2 := s.EndDate.Date()
	return time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC).
		After(time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC))
}
