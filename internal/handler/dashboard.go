package handler

import (
	"net/http"
	"time"

	"github.com/spacedlevo/betting-syndicate/internal/calc"
	"github.com/spacedlevo/betting-syndicate/internal/config"
	"github.com/spacedlevo/betting-syndicate/internal/ledger"
	"github.com/spacedlevo/betting-syndicate/internal/models"
	"github.com/spacedlevo/betting-syndicate/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardHandler serves the two overview endpoints. Every figure is
// derived from the ledger on each request; nothing is cached.
type DashboardHandler struct {
	DB    *gorm.DB
	Rules calc.Rules
}

func NewDashboardHandler(db *gorm.DB, cfg *config.Config) *DashboardHandler {
	return &DashboardHandler{DB: db, Rules: rulesFromConfig(cfg)}
}

// Overview is the main dashboard: syndicate figures, the performance
// table, the current week's duty players and recent bets.
func (h *DashboardHandler) Overview(c *gin.Context) {
	season, err := activeSeason(h.DB)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	if season == nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "no active season")
		return
	}

	now := time.Now()
	sid := season.ID

	balance, err := calc.SyndicateBalance(h.DB, &sid)
	if err != nil {
		writeError(c, err)
		return
	}
	contributions, err := calc.TotalContributions(h.DB, &sid, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	betsPlaced, err := calc.NetBetsPlaced(h.DB, &sid, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	winnings, err := calc.TotalWinnings(h.DB, &sid, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	profitLoss, err := calc.ProfitLoss(h.DB, &sid, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	profitPct, err := calc.ProfitPercentage(h.DB, &sid)
	if err != nil {
		writeError(c, err)
		return
	}
	expectedPerPlayer, err := calc.ExpectedContributionPerPlayer(h.DB, sid, h.Rules, now)
	if err != nil {
		writeError(c, err)
		return
	}
	expectedTotal, err := calc.ExpectedContributions(h.DB, sid, h.Rules, now)
	if err != nil {
		writeError(c, err)
		return
	}
	share, err := calc.SharePerPlayer(h.DB, sid)
	if err != nil {
		writeError(c, err)
		return
	}

	stats, err := calc.PlayerPerformanceStats(h.DB, &sid, h.Rules, now)
	if err != nil {
		writeError(c, err)
		return
	}

	activeCount, err := ledger.CountActivePlayersInSeason(h.DB, sid)
	if err != nil {
		writeError(c, err)
		return
	}
	betPerPerson := decimal.Zero.Round(2)
	if activeCount > 0 {
		betPerPerson = betsPlaced.Div(decimal.NewFromInt(activeCount)).Round(2)
	}

	var recentBets []models.Bet
	if err := h.DB.Preload("PlacedByPlayer").Order("bet_date DESC, id DESC").
		Limit(10).Find(&recentBets).Error; err != nil {
		writeError(c, err)
		return
	}

	util.Success(c, util.Response{
		"season":                  season,
		"is_frozen":               season.Frozen(now),
		"bank_balance":            balance,
		"total_contributions":     contributions,
		"total_bets_placed":       betsPlaced,
		"total_winnings":          winnings,
		"profit_loss":             profitLoss,
		"profit_percentage":       profitPct,
		"expected_per_player":     expectedPerPlayer,
		"expected_contributions":  expectedTotal,
		"share_per_player":        share,
		"bet_amount_per_person":   betPerPerson,
		"player_stats":            stats,
		"assigned_players":        h.currentAssignments(sid, now),
		"recent_bets":             recentBets,
		"num_active_players":      activeCount,
	})
}

// Summary is the compact view for sharing: payout per player, ranking,
// budgets, duty players and who still owes money.
func (h *DashboardHandler) Summary(c *gin.Context) {
	season, err := activeSeason(h.DB)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	if season == nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "no active season")
		return
	}

	now := time.Now()
	sid := season.ID

	balance, err := calc.SyndicateBalance(h.DB, &sid)
	if err != nil {
		writeError(c, err)
		return
	}
	share, err := calc.SharePerPlayer(h.DB, sid)
	if err != nil {
		writeError(c, err)
		return
	}
	expectedPerPlayer, err := calc.ExpectedContributionPerPlayer(h.DB, sid, h.Rules, now)
	if err != nil {
		writeError(c, err)
		return
	}
	profitLoss, err := calc.ProfitLoss(h.DB, &sid, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	profitPct, err := calc.ProfitPercentage(h.DB, &sid)
	if err != nil {
		writeError(c, err)
		return
	}

	stats, err := calc.PlayerPerformanceStats(h.DB, &sid, h.Rules, now)
	if err != nil {
		writeError(c, err)
		return
	}

	type summaryRow struct {
		calc.PlayerStats
		Expected decimal.Decimal `json:"expected"`
		Owes     decimal.Decimal `json:"owes"`
		Payout   decimal.Decimal `json:"payout"`
	}

	rows := make([]summaryRow, 0, len(stats))
	for _, s := range stats {
		owes := expectedPerPlayer.Sub(s.Balance)
		if owes.IsNegative() {
			owes = decimal.Zero
		}
		payout, err := calc.PlayerPayoutAmount(h.DB, s.PlayerID, sid, h.Rules, now)
		if err != nil {
			writeError(c, err)
			return
		}
		rows = append(rows, summaryRow{
			PlayerStats: s,
			Expected:    expectedPerPlayer,
			Owes:        owes,
			Payout:      payout,
		})
	}

	util.Success(c, util.Response{
		"season":              season,
		"bank_balance":        balance,
		"share_per_player":    share,
		"expected_per_player": expectedPerPlayer,
		"profit_loss":         profitLoss,
		"profit_percentage":   profitPct,
		"player_stats":        rows,
		"assigned_players":    h.currentAssignments(sid, now),
		"weeks_elapsed":       calc.CountMondays(season.StartDate, now),
		"today":               now.Format("2006-01-02"),
	})
}

// currentAssignments names the players on duty for the week containing
// today, in assignment order.
func (h *DashboardHandler) currentAssignments(seasonID uint, today time.Time) []string {
	var week models.Week
	err := h.DB.Where("season_id = ? AND start_date <= ? AND end_date >= ?",
		seasonID, today, today).First(&week).Error
	if err != nil {
		return nil
	}

	var assignments []models.WeekAssignment
	if err := h.DB.Where("week_id = ?", week.ID).
		Preload("Player").
		Order("assignment_order").Find(&assignments).Error; err != nil {
		return nil
	}

	names := make([]string, 0, len(assignments))
	for _, a := range assignments {
		if a.Player != nil {
			names = append(names, a.Player.Name)
		}
	}
	return names
}
