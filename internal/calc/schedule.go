package calc

import (
	"errors"
	"time"

	"github.com/spacedlevo/betting-syndicate/internal/ledger"
	"github.com/spacedlevo/betting-syndicate/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Schedule arithmetic. Everything here is pure calendar maths: no ledger
// lookups, no stored state.

// dateOnly truncates t to its calendar date.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CountMondays counts Mondays from start up to and including end, the
// start date itself included if it is a Monday. Each Monday is one week of
// contribution owed. Returns 0 when end is before the first Monday.
func CountMondays(start, end time.Time) int {
	start, end = dateOnly(start), dateOnly(end)
	if end.Before(start) {
		return 0
	}

	firstMonday := start
	if start.Weekday() != time.Monday {
		daysUntil := (int(time.Monday) - int(start.Weekday()) + 7) % 7
		firstMonday = start.AddDate(0, 0, daysUntil)
	}
	if firstMonday.After(end) {
		return 0
	}

	days := int(end.Sub(firstMonday).Hours() / 24)
	return days/7 + 1
}

// BettingBudget is the total budget a player has accrued since the season
// started: one BudgetPerCycle for every started cycle of BudgetCycleWeeks
// whole weeks. Zero before the season starts.
func BettingBudget(seasonStart, today time.Time, rules Rules) decimal.Decimal {
	seasonStart, today = dateOnly(seasonStart), dateOnly(today)
	if today.Before(seasonStart) {
		return decimal.Zero.Round(2)
	}

	wholeWeeks := int(today.Sub(seasonStart).Hours()/24) / 7
	cycles := wholeWeeks / rules.BudgetCycleWeeks
	if wholeWeeks%rules.BudgetCycleWeeks != 0 {
		cycles++
	}
	return rules.BudgetPerCycle.Mul(decimal.NewFromInt(int64(cycles))).Round(2)
}

// ExpectedContributionPerPlayer is what each player should have paid in by
// today: Mondays elapsed since the season start times the weekly amount.
func ExpectedContributionPerPlayer(db *gorm.DB, seasonID uint, rules Rules, today time.Time) (decimal.Decimal, error) {
	var season models.Season
	if err := db.First(&season, seasonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero.Round(2), nil
		}
		return decimal.Zero, err
	}

	weeks := CountMondays(season.StartDate, today)
	return rules.WeeklyContribution.Mul(decimal.NewFromInt(int64(weeks))).Round(2), nil
}

// ExpectedContributions is the schedule's total for the whole roster:
// per-player expectation times the active player count.
func ExpectedContributions(db *gorm.DB, seasonID uint, rules Rules, today time.Time) (decimal.Decimal, error) {
	perPlayer, err := ExpectedContributionPerPlayer(db, seasonID, rules, today)
	if err != nil {
		return decimal.Zero, err
	}
	n, err := ledger.CountActivePlayersInSeason(db, seasonID)
	if err != nil {
		return decimal.Zero, err
	}
	return perPlayer.Mul(decimal.NewFromInt(n)).Round(2), nil
}
