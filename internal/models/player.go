package models

import "time"

// Player is a member of the betting syndicate. Players can take part in
// multiple seasons through PlayerSeason memberships.
type Player struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerSeason links a player to a season. A player can be globally active
// but inactive in a given season, or the other way round.
type PlayerSeason struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PlayerID   uint      `gorm:"not null;uniqueIndex:uq_player_season" json:"player_id"`
	SeasonID   uint      `gorm:"not null;uniqueIndex:uq_player_season" json:"season_id"`
	JoinedDate time.Time `gorm:"not null" json:"joined_date"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`

	Player *Player `gorm:"foreignKey:PlayerID" json:"player,omitempty"`
	Season *Season `gorm:"foreignKey:SeasonID" json:"-"`
}

func (PlayerSeason) TableName() string { return "player_seasons" }
