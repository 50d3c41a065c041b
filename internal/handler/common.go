package handler

import (
	"errors"
	"net/http"

	"github.com/spacedlevo/betting-syndicate/internal/calc"
	"github.com/spacedlevo/betting-syndicate/internal/config"
	"github.com/spacedlevo/betting-syndicate/internal/importer"
	"github.com/spacedlevo/betting-syndicate/internal/ledger"
	"github.com/spacedlevo/betting-syndicate/internal/models"
	"github.com/spacedlevo/betting-syndicate/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// rulesFromConfig builds the calc rules from the config strings, falling
// back to the house defaults on a malformed value.
func rulesFromConfig(cfg *config.Config) calc.Rules {
	rules := calc.DefaultRules()
	if d, err := decimal.NewFromString(cfg.Ledger.WeeklyContribution); err == nil && d.IsPositive() {
		rules.WeeklyContribution = d
	}
	if cfg.Ledger.BudgetCycleWeeks > 0 {
		rules.BudgetCycleWeeks = cfg.Ledger.BudgetCycleWeeks
	}
	if d, err := decimal.NewFromString(cfg.Ledger.BudgetPerCycle); err == nil && d.IsPositive() {
		rules.BudgetPerCycle = d
	}
	return rules
}

// activeSeason returns the currently active season, or nil when none is.
func activeSeason(db *gorm.DB) (*models.Season, error) {
	var season models.Season
	err := db.Where("is_active = ?", true).First(&season).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &season, nil
}

// writeError maps engine errors onto the JSON envelope.
func writeError(c *gin.Context, err error) {
	var rowErr *importer.RowError
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidStatus):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case errors.Is(err, ledger.ErrUnknownPlayer),
		errors.Is(err, ledger.ErrUnknownSeason),
		errors.Is(err, ledger.ErrUnknownBet),
		errors.Is(err, gorm.ErrRecordNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, err.Error())
	case errors.As(err, &rowErr):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
	}
}
