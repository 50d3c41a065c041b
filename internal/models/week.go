package models

import "time"

// Week is a weekly round within a season, numbered 1, 2, 3, ...
// Weeks exist for assignment scheduling only; ledger entries reference
// them optionally.
type Week struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SeasonID   uint      `gorm:"not null;uniqueIndex:uq_season_week" json:"season_id"`
	WeekNumber int       `gorm:"not null;uniqueIndex:uq_season_week" json:"week_number"`
	StartDate  time.Time `gorm:"not null" json:"start_date"`
	EndDate    time.Time `gorm:"not null" json:"end_date"`
	CreatedAt  time.Time `json:"created_at"`

	Season *Season `gorm:"foreignKey:SeasonID" json:"-"`
}

// WeekAssignment puts a player on betting duty for a week. Each week has
// exactly two assignments, order 1 and order 2.
type WeekAssignment struct {
	ID              uint `gorm:"primaryKey" json:"id"`
	WeekID          uint `gorm:"not null;uniqueIndex:uq_week_player;uniqueIndex:uq_week_order" json:"week_id"`
	PlayerID        uint `gorm:"not null;uniqueIndex:uq_week_player" json:"player_id"`
	AssignmentOrder int  `gorm:"not null;uniqueIndex:uq_week_order;check:assignment_order IN (1,2)" json:"assignment_order"`

	Week   *Week   `gorm:"foreignKey:WeekID" json:"-"`
	Player *Player `gorm:"foreignKey:PlayerID" json:"player,omitempty"`
}

func (WeekAssignment) TableName() string { return "week_assignments" }
