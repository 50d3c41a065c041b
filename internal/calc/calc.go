// Package calc derives every balance, total and statistic the syndicate
// exposes. Nothing in here writes: all values are computed on demand from
// the immutable ledger (package ledger appends, calc reads). There are no
// stored balances anywhere to reconcile against.
package calc

import (
	"errors"
	"sort"
	"time"

	"github.com/spacedlevo/betting-syndicate/internal/ledger"
	"github.com/spacedlevo/betting-syndicate/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Rules are the syndicate's money parameters. They feed the schedule
// arithmetic only; the ledger aggregations below never depend on them.
type Rules struct {
	WeeklyContribution decimal.Decimal // owed per player per Monday
	BudgetCycleWeeks   int             // betting budget accrues every N whole weeks
	BudgetPerCycle     decimal.Decimal // budget granted per cycle per player
}

// DefaultRules returns the house rules: £5 a week in, £30 of betting
// budget every 6 weeks.
func DefaultRules() Rules {
	return Rules{
		WeeklyContribution: decimal.RequireFromString("5.00"),
		BudgetCycleWeeks:   6,
		BudgetPerCycle:     decimal.RequireFromString("30.00"),
	}
}

// sumAmounts adds up entry amounts for one kind, optionally scoped by
// season and/or player. Summation happens in Go on exact decimals; the
// database is only asked for the matching amounts.
func sumAmounts(db *gorm.DB, kind models.EntryKind, seasonID, playerID *uint) (decimal.Decimal, error) {
	q := db.Model(&models.Entry{}).Where("kind = ?", kind)
	if seasonID != nil {
		q = q.Where("season_id = ?", *seasonID)
	}
	if playerID != nil {
		q = q.Where("player_id = ?", *playerID)
	}

	var amounts []decimal.Decimal
	if err := q.Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total, nil
}

// TotalContributions is the sum of contribution entries (paid in).
func TotalContributions(db *gorm.DB, seasonID, playerID *uint) (decimal.Decimal, error) {
	return sumAmounts(db, models.KindContribution, seasonID, playerID)
}

// TotalWinnings is the sum of winnings entries (bets won).
func TotalWinnings(db *gorm.DB, seasonID, playerID *uint) (decimal.Decimal, error) {
	return sumAmounts(db, models.KindWinnings, seasonID, playerID)
}

// GrossBetsPlaced is the total staked, |sum of bet_placed entries|,
// including stakes that were later voided.
func GrossBetsPlaced(db *gorm.DB, seasonID, playerID *uint) (decimal.Decimal, error) {
	placed, err := sumAmounts(db, models.KindBetPlaced, seasonID, playerID)
	if err != nil {
		return decimal.Zero, err
	}
	return placed.Abs(), nil
}

// NetBetsPlaced is the amount actually at risk: gross stakes minus voided
// stakes. A placed-then-voided bet contributes exactly zero.
func NetBetsPlaced(db *gorm.DB, seasonID, playerID *uint) (decimal.Decimal, error) {
	gross, err := GrossBetsPlaced(db, seasonID, playerID)
	if err != nil {
		return decimal.Zero, err
	}
	voided, err := sumAmounts(db, models.KindBetVoid, seasonID, playerID)
	if err != nil {
		return decimal.Zero, err
	}
	return gross.Sub(voided), nil
}

// TotalPayouts is |sum of payout entries| (money withdrawn).
func TotalPayouts(db *gorm.DB, seasonID, playerID *uint) (decimal.Decimal, error) {
	paid, err := sumAmounts(db, models.KindPayout, seasonID, playerID)
	if err != nil {
		return decimal.Zero, err
	}
	return paid.Abs(), nil
}

// SyndicateBalance is the bank balance:
//
//	(paid in + bets won) - bets placed - paid out
//
// Gross stakes are subtracted: voided bets affect the amount at risk and
// the betting budget, not this figure.
func SyndicateBalance(db *gorm.DB, seasonID *uint) (decimal.Decimal, error) {
	paidIn, err := TotalContributions(db, seasonID, nil)
	if err != nil {
		return decimal.Zero, err
	}
	won, err := TotalWinnings(db, seasonID, nil)
	if err != nil {
		return decimal.Zero, err
	}
	staked, err := GrossBetsPlaced(db, seasonID, nil)
	if err != nil {
		return decimal.Zero, err
	}
	paidOut, err := TotalPayouts(db, seasonID, nil)
	if err != nil {
		return decimal.Zero, err
	}
	return paidIn.Add(won).Sub(staked).Sub(paidOut), nil
}

// NetPosition is how much a player has "in": contributions plus payouts
// (payouts are stored negative, so this is a plain sum).
func NetPosition(db *gorm.DB, playerID uint, seasonID *uint) (decimal.Decimal, error) {
	q := db.Model(&models.Entry{}).
		Where("player_id = ? AND kind IN ?", playerID,
			[]models.EntryKind{models.KindContribution, models.KindPayout})
	if seasonID != nil {
		q = q.Where("season_id = ?", *seasonID)
	}

	var amounts []decimal.Decimal
	if err := q.Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total, nil
}

// ProfitLoss is bets won minus the net amount staked.
func ProfitLoss(db *gorm.DB, seasonID, playerID *uint) (decimal.Decimal, error) {
	won, err := TotalWinnings(db, seasonID, playerID)
	if err != nil {
		return decimal.Zero, err
	}
	staked, err := NetBetsPlaced(db, seasonID, playerID)
	if err != nil {
		return decimal.Zero, err
	}
	return won.Sub(staked), nil
}

// ProfitPercentage is profit/loss over net stakes, as a percentage rounded
// to 2dp. Defined as 0.00 when nothing is at risk, so it never divides by
// zero.
func ProfitPercentage(db *gorm.DB, seasonID *uint) (decimal.Decimal, error) {
	staked, err := NetBetsPlaced(db, seasonID, nil)
	if err != nil {
		return decimal.Zero, err
	}
	if staked.IsZero() {
		return decimal.Zero.Round(2), nil
	}
	pl, err := ProfitLoss(db, seasonID, nil)
	if err != nil {
		return decimal.Zero, err
	}
	return pl.Div(staked).Mul(decimal.NewFromInt(100)).Round(2), nil
}

// SharePerPlayer is each player's equal cut of the season's winnings:
// total winnings / active player count, rounded to 2dp. This is derived at
// read time, so it always reflects the roster at the moment of the query,
// not the roster when the bet won. 0.00 when the season has no active
// players.
func SharePerPlayer(db *gorm.DB, seasonID uint) (decimal.Decimal, error) {
	won, err := TotalWinnings(db, &seasonID, nil)
	if err != nil {
		return decimal.Zero, err
	}
	n, err := ledger.CountActivePlayersInSeason(db, seasonID)
	if err != nil {
		return decimal.Zero, err
	}
	if n == 0 {
		return decimal.Zero.Round(2), nil
	}
	return won.Div(decimal.NewFromInt(n)).Round(2), nil
}

// PlayerPayoutAmount is what a player would walk away with if cashing out
// now: their net position, less what the schedule says they should have
// contributed so far, plus their equal share of the winnings.
func PlayerPayoutAmount(db *gorm.DB, playerID, seasonID uint, rules Rules, today time.Time) (decimal.Decimal, error) {
	position, err := NetPosition(db, playerID, &seasonID)
	if err != nil {
		return decimal.Zero, err
	}
	expected, err := ExpectedContributionPerPlayer(db, seasonID, rules, today)
	if err != nil {
		return decimal.Zero, err
	}
	share, err := SharePerPlayer(db, seasonID)
	if err != nil {
		return decimal.Zero, err
	}
	return position.Sub(expected).Add(share), nil
}

// PlayerBetBalance is the betting budget a player still has available:
// the accrued budget minus their net stakes. Voiding a bet hands the stake
// back to the budget.
func PlayerBetBalance(db *gorm.DB, playerID uint, seasonID *uint, rules Rules, today time.Time) (decimal.Decimal, error) {
	var season models.Season
	q := db
	if seasonID != nil {
		q = q.Where("id = ?", *seasonID)
	} else {
		q = q.Where("is_active = ?", true)
	}
	if err := q.First(&season).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero.Round(2), nil
		}
		return decimal.Zero, err
	}

	budget := BettingBudget(season.StartDate, today, rules)
	staked, err := NetBetsPlaced(db, seasonID, &playerID)
	if err != nil {
		return decimal.Zero, err
	}
	return budget.Sub(staked), nil
}

// PlayerStats is one row of the performance table.
type PlayerStats struct {
	PlayerID   uint            `json:"player_id"`
	PlayerName string          `json:"player_name"`
	Balance    decimal.Decimal `json:"balance"`     // net position (in - out)
	BetsPlaced decimal.Decimal `json:"bets_placed"` // net stakes
	BetBalance decimal.Decimal `json:"bet_balance"` // remaining betting budget
	Won        decimal.Decimal `json:"won"`
	ProfitLoss decimal.Decimal `json:"profit_loss"` // won - bets placed
}

// PlayerPerformanceStats returns one row per active player, biggest
// winners first. Ties keep their relative (name) order.
func PlayerPerformanceStats(db *gorm.DB, seasonID *uint, rules Rules, today time.Time) ([]PlayerStats, error) {
	var players []models.Player
	if seasonID != nil {
		var err error
		players, err = ledger.ActivePlayersInSeason(db, *seasonID)
		if err != nil {
			return nil, err
		}
	} else {
		if err := db.Where("is_active = ?", true).Order("name").Find(&players).Error; err != nil {
			return nil, err
		}
	}

	stats := make([]PlayerStats, 0, len(players))
	for _, p := range players {
		balance, err := NetPosition(db, p.ID, seasonID)
		if err != nil {
			return nil, err
		}
		staked, err := NetBetsPlaced(db, seasonID, &p.ID)
		if err != nil {
			return nil, err
		}
		betBalance, err := PlayerBetBalance(db, p.ID, seasonID, rules, today)
		if err != nil {
			return nil, err
		}
		won, err := TotalWinnings(db, seasonID, &p.ID)
		if err != nil {
			return nil, err
		}

		stats = append(stats, PlayerStats{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Balance:    balance,
			BetsPlaced: staked,
			BetBalance: betBalance,
			Won:        won,
			ProfitLoss: won.Sub(staked),
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].ProfitLoss.GreaterThan(stats[j].ProfitLoss)
	})

	return stats, nil
}
