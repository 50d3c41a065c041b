package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind classifies a ledger entry and fixes the sign of its amount.
type EntryKind string

const (
	KindContribution EntryKind = "contribution" // player pays in (+)
	KindBetPlaced    EntryKind = "bet_placed"   // stake leaves the bank (-)
	KindWinnings     EntryKind = "winnings"     // bet won, full return credited (+)
	KindBetVoid      EntryKind = "bet_void"     // stake returned (+)
	KindPayout       EntryKind = "payout"       // withdrawal to a player (-)
)

// Valid reports whether k is one of the five entry kinds.
func (k EntryKind) Valid() bool {
	switch k {
	case KindContribution, KindBetPlaced, KindWinnings, KindBetVoid, KindPayout:
		return true
	}
	return false
}

// Entry is the single source of truth for all financial activity.
//
// Entries are immutable: they are only ever inserted, never updated or
// deleted. Every balance and statistic is derived from this table; there is
// no stored balance anywhere.
//
// The equal share of winnings per player is NOT stored here. A win is one
// entry credited to the player who placed the bet, and the share is derived
// at read time as total winnings / number of active players.
type Entry struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	EntryDate time.Time       `gorm:"not null;index" json:"entry_date"`
	Kind      EntryKind       `gorm:"size:20;not null;index;check:kind IN ('contribution','bet_placed','winnings','bet_void','payout')" json:"kind"`
	PlayerID  uint            `gorm:"not null;index" json:"player_id"`
	SeasonID  uint            `gorm:"not null;index" json:"season_id"`
	WeekID    *uint           `json:"week_id,omitempty"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"` // positive for IN, negative for OUT
	Description string        `gorm:"type:text" json:"description"`
	BetID     *uint           `gorm:"index" json:"bet_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	CreatedBy string          `gorm:"size:100" json:"created_by,omitempty"`

	Player *Player `gorm:"foreignKey:PlayerID" json:"player,omitempty"`
	Season *Season `gorm:"foreignKey:SeasonID" json:"-"`
	Week   *Week   `gorm:"foreignKey:WeekID" json:"-"`
	Bet    *Bet    `gorm:"foreignKey:BetID" json:"-"`
}

func (Entry) TableName() string { return "ledger" }
