package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetStatus is the settlement state of a bet.
type BetStatus string

const (
	BetPending BetStatus = "pending"
	BetWon     BetStatus = "won"
	BetLost    BetStatus = "lost"
	BetVoid    BetStatus = "void"
)

// Valid reports whether s is one of the four bet statuses.
func (s BetStatus) Valid() bool {
	switch s {
	case BetPending, BetWon, BetLost, BetVoid:
		return true
	}
	return false
}

// Bet holds the metadata of a wager placed by the syndicate. The financial
// impact lives in the ledger (bet_placed / winnings / bet_void entries
// referencing the bet by id); the bet row itself carries no balance.
//
// Odds are a free string, e.g. "5/1", "2.5" or "evens". Winnings is the
// total return (stake + profit) once the bet is settled as won.
type Bet struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	WeekID           *uint            `json:"week_id,omitempty"` // nil for imported historical data
	PlacedByPlayerID uint             `gorm:"not null;index" json:"placed_by_player_id"`
	Stake            decimal.Decimal  `gorm:"type:numeric(10,2);not null;check:stake > 0" json:"stake"`
	Description      string           `gorm:"type:text;not null" json:"description"`
	Odds             string           `gorm:"size:50" json:"odds,omitempty"`
	BetDate          time.Time        `gorm:"not null;index" json:"bet_date"`
	Status           BetStatus        `gorm:"size:20;not null;default:pending;check:status IN ('pending','won','lost','void')" json:"status"`
	ResultDate       *time.Time       `json:"result_date,omitempty"`
	Winnings         *decimal.Decimal `gorm:"type:numeric(10,2)" json:"winnings,omitempty"`
	Notes            string           `gorm:"type:text" json:"notes,omitempty"`
	Screenshot       string           `gorm:"size:255" json:"screenshot,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`

	Week           *Week   `gorm:"foreignKey:WeekID" json:"-"`
	PlacedByPlayer *Player `gorm:"foreignKey:PlacedByPlayerID" json:"placed_by_player,omitempty"`
}
