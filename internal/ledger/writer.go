package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/spacedlevo/betting-syndicate/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Writer is the single point of entry for ALL financial operations.
//
// It owns the sign convention of the ledger: callers always pass positive
// magnitudes and the writer applies the sign for the entry kind. Ledger
// entries are immutable - the writer only ever inserts, never updates or
// deletes. Each Record* call is one database transaction: either the entry
// (and, for PlaceBet, the parent bet row) is durably persisted, or nothing
// is.
//
// The writer never reads prior entries to decide whether a write is
// allowed; there are no running-balance checks. Correctness lives entirely
// on the read side (package calc).
type Writer struct {
	DB *gorm.DB
}

func NewWriter(db *gorm.DB) *Writer {
	return &Writer{DB: db}
}

// EntryInput carries the common fields of a writer command. Amount is
// always a positive magnitude; the writer negates it where the kind
// requires.
type EntryInput struct {
	PlayerID    uint
	SeasonID    uint
	WeekID      *uint
	BetID       *uint
	Amount      decimal.Decimal
	EntryDate   time.Time
	Description string
	CreatedBy   string
}

// RecordContribution records a player paying their weekly amount in.
func (w *Writer) RecordContribution(in EntryInput) (*models.Entry, error) {
	if in.Description == "" {
		in.Description = "Weekly contribution"
	}
	in.BetID = nil
	return w.append(models.KindContribution, in, false)
}

// RecordBetPlaced records the stake of a bet leaving the bank, credited
// against the player who placed it. BetID must reference an existing bet.
func (w *Writer) RecordBetPlaced(in EntryInput) (*models.Entry, error) {
	if in.Description == "" {
		in.Description = "Bet placed"
	}
	return w.append(models.KindBetPlaced, in, true)
}

// RecordBetWon records the full winnings of a settled bet, credited to the
// player who placed it. The equal share per player is NOT written here;
// it is derived at read time as total winnings / active player count.
func (w *Writer) RecordBetWon(in EntryInput) (*models.Entry, error) {
	if in.Description == "" {
		in.Description = "Bet won"
	}
	return w.append(models.KindWinnings, in, false)
}

// RecordBetVoid records a voided bet's stake returning to the bank. The
// positive amount offsets the earlier bet_placed entry, so voided stakes
// drop out of the amount-at-risk and free up betting budget.
func (w *Writer) RecordBetVoid(in EntryInput) (*models.Entry, error) {
	if in.Description == "" {
		in.Description = "Bet voided, stake returned"
	}
	return w.append(models.KindBetVoid, in, true)
}

// RecordPayout records a withdrawal to a player.
func (w *Writer) RecordPayout(in EntryInput) (*models.Entry, error) {
	if in.Description == "" {
		in.Description = "Payout to player"
	}
	in.BetID = nil
	in.WeekID = nil
	return w.append(models.KindPayout, in, false)
}

// append validates the input and inserts one entry inside a transaction.
// requireBet makes the bet reference mandatory (bet_placed / bet_void).
func (w *Writer) append(kind models.EntryKind, in EntryInput, requireBet bool) (*models.Entry, error) {
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%s: %w (got %s)", kind, ErrInvalidAmount, in.Amount)
	}

	amount := in.Amount
	switch kind {
	case models.KindBetPlaced, models.KindPayout:
		amount = amount.Neg() // money going OUT
	}

	entry := models.Entry{
		EntryDate:   in.EntryDate,
		Kind:        kind,
		PlayerID:    in.PlayerID,
		SeasonID:    in.SeasonID,
		WeekID:      in.WeekID,
		Amount:      amount,
		Description: in.Description,
		BetID:       in.BetID,
		CreatedBy:   in.CreatedBy,
	}

	err := w.DB.Transaction(func(tx *gorm.DB) error {
		if err := checkRefs(tx, in, requireBet); err != nil {
			return err
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// checkRefs verifies that every referenced row exists before anything is
// written.
func checkRefs(tx *gorm.DB, in EntryInput, requireBet bool) error {
	var player models.Player
	if err := tx.First(&player, in.PlayerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("player %d: %w", in.PlayerID, ErrUnknownPlayer)
		}
		return err
	}

	var season models.Season
	if err := tx.First(&season, in.SeasonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("season %d: %w", in.SeasonID, ErrUnknownSeason)
		}
		return err
	}

	if in.BetID != nil || requireBet {
		if in.BetID == nil {
			return fmt.Errorf("bet reference required: %w", ErrUnknownBet)
		}
		var bet models.Bet
		if err := tx.First(&bet, *in.BetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("bet %d: %w", *in.BetID, ErrUnknownBet)
			}
			return err
		}
	}

	return nil
}

// PlaceBet creates the bet row and its bet_placed ledger entry in one
// transaction. The returned bet starts in status pending.
func (w *Writer) PlaceBet(bet *models.Bet, seasonID uint, createdBy string) (*models.Entry, error) {
	if !bet.Stake.IsPositive() {
		return nil, fmt.Errorf("stake: %w (got %s)", ErrInvalidAmount, bet.Stake)
	}
	if bet.Status == "" {
		bet.Status = models.BetPending
	}

	var entry *models.Entry
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		in := EntryInput{
			PlayerID:  bet.PlacedByPlayerID,
			SeasonID:  seasonID,
			WeekID:    bet.WeekID,
			Amount:    bet.Stake,
			EntryDate: bet.BetDate,
			CreatedBy: createdBy,
		}
		if err := checkRefs(tx, in, false); err != nil {
			return err
		}
		if err := tx.Create(bet).Error; err != nil {
			return err
		}

		entry = &models.Entry{
			EntryDate:   bet.BetDate,
			Kind:        models.KindBetPlaced,
			PlayerID:    bet.PlacedByPlayerID,
			SeasonID:    seasonID,
			WeekID:      bet.WeekID,
			Amount:      bet.Stake.Neg(),
			Description: "Bet placed",
			BetID:       &bet.ID,
			CreatedBy:   createdBy,
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// SettleBet marks a bet won, lost or void and writes the matching ledger
// entry in the same transaction. Status must be one of those three
// settlement states. Won writes a winnings entry for the full return; void
// returns the stake; lost writes nothing (the money already left via
// bet_placed).
func (w *Writer) SettleBet(betID uint, seasonID uint, status models.BetStatus, resultDate time.Time, winnings decimal.Decimal, createdBy string) error {
	switch status {
	case models.BetWon, models.BetLost, models.BetVoid:
	default:
		return fmt.Errorf("settle with status %q: %w", status, ErrInvalidStatus)
	}
	if status == models.BetWon && !winnings.IsPositive() {
		return fmt.Errorf("winnings: %w (got %s)", ErrInvalidAmount, winnings)
	}

	return w.DB.Transaction(func(tx *gorm.DB) error {
		var bet models.Bet
		if err := tx.First(&bet, betID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("bet %d: %w", betID, ErrUnknownBet)
			}
			return err
		}

		bet.Status = status
		bet.ResultDate = &resultDate
		if status == models.BetWon {
			bet.Winnings = &winnings
		}
		if err := tx.Save(&bet).Error; err != nil {
			return err
		}

		var entry *models.Entry
		switch status {
		case models.BetWon:
			entry = &models.Entry{
				EntryDate:   resultDate,
				Kind:        models.KindWinnings,
				PlayerID:    bet.PlacedByPlayerID,
				SeasonID:    seasonID,
				WeekID:      bet.WeekID,
				Amount:      winnings,
				Description: "Bet won",
				BetID:       &bet.ID,
				CreatedBy:   createdBy,
			}
		case models.BetVoid:
			entry = &models.Entry{
				EntryDate:   resultDate,
				Kind:        models.KindBetVoid,
				PlayerID:    bet.PlacedByPlayerID,
				SeasonID:    seasonID,
				WeekID:      bet.WeekID,
				Amount:      bet.Stake,
				Description: "Bet voided, stake returned",
				BetID:       &bet.ID,
				CreatedBy:   createdBy,
			}
		}
		if entry == nil {
			return nil
		}
		return tx.Create(entry).Error
	})
}
