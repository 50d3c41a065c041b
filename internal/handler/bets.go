package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spacedlevo/betting-syndicate/internal/config"
	"github.com/spacedlevo/betting-syndicate/internal/ledger"
	"github.com/spacedlevo/betting-syndicate/internal/models"
	"github.com/spacedlevo/betting-syndicate/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BetHandler manages bet metadata and the settlement flow. Every
// financial consequence goes through the ledger writer; the bet row
// itself never carries a balance.
type BetHandler struct {
	DB        *gorm.DB
	Writer    *ledger.Writer
	UploadDir string
}

func NewBetHandler(db *gorm.DB, cfg *config.Config) *BetHandler {
	return &BetHandler{DB: db, Writer: ledger.NewWriter(db), UploadDir: cfg.Upload.Dir}
}

type createBetReq struct {
	PlacedByPlayerID uint   `json:"placed_by_player_id" binding:"required"`
	Stake            string `json:"stake" binding:"required"`
	Description      string `json:"description" binding:"required"`
	Odds             string `json:"odds"`
	BetDate          string `json:"bet_date" binding:"required"`
	WeekID           *uint  `json:"week_id"`
	Notes            string `json:"notes"`
}

type settleBetReq struct {
	Status     string `json:"status" binding:"required,oneof=won lost void"`
	ResultDate string `json:"result_date" binding:"required"`
	Winnings   string `json:"winnings"`
}

// List returns recent bets, optionally filtered by status.
func (h *BetHandler) List(c *gin.Context) {
	q := h.DB.Model(&models.Bet{}).Preload("PlacedByPlayer").Order("bet_date DESC, id DESC")

	if s := c.Query("status"); s != "" {
		status := models.BetStatus(s)
		if !status.Valid() {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown bet status")
			return
		}
		q = q.Where("status = ?", status)
	}

	var bets []models.Bet
	if err := q.Limit(100).Find(&bets).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	util.Success(c, util.Response{"bets": bets})
}

// Get returns one bet with its ledger trail.
func (h *BetHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid bet id")
		return
	}

	var bet models.Bet
	if err := h.DB.Preload("PlacedByPlayer").First(&bet, uint(id)).Error; err != nil {
		writeError(c, err)
		return
	}

	betID := bet.ID
	entries, _, err := ledger.Entries(h.DB, ledger.EntryFilter{BetID: &betID})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	util.Success(c, util.Response{"bet": bet, "entries": entries})
}

// Create places a new bet: the bet row and its bet_placed ledger entry
// are written in one transaction.
func (h *BetHandler) Create(c *gin.Context) {
	var req createBetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	season, err := activeSeason(h.DB)
	if err != nil || season == nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "no active season")
		return
	}
	if season.Frozen(time.Now()) {
		util.Error(c, http.StatusConflict, util.CodeFrozen, "season has ended")
		return
	}

	stake, err := util.ParseAmount(req.Stake)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	betDate, err := util.ParseDate(req.BetDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	bet := models.Bet{
		WeekID:           req.WeekID,
		PlacedByPlayerID: req.PlacedByPlayerID,
		Stake:            stake,
		Description:      req.Description,
		Odds:             req.Odds,
		BetDate:          betDate,
		Notes:            req.Notes,
	}

	entry, err := h.Writer.PlaceBet(&bet, season.ID, "")
	if err != nil {
		writeError(c, err)
		return
	}

	util.Success(c, util.Response{"bet": bet, "entry": entry})
}

// Settle records a bet result. Won needs a positive winnings amount and
// credits the full return to the placing player; void returns the stake;
// lost writes no entry.
func (h *BetHandler) Settle(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid bet id")
		return
	}

	var req settleBetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	season, err := activeSeason(h.DB)
	if err != nil || season == nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "no active season")
		return
	}

	resultDate, err := util.ParseDate(req.ResultDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	status := models.BetStatus(req.Status)
	winnings := decimal.Zero
	if status == models.BetWon {
		winnings, err = util.ParseAmount(req.Winnings)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	if err := h.Writer.SettleBet(uint(id), season.ID, status, resultDate, winnings, ""); err != nil {
		writeError(c, err)
		return
	}

	var bet models.Bet
	if err := h.DB.First(&bet, uint(id)).Error; err != nil {
		writeError(c, err)
		return
	}
	util.Success(c, util.Response{"bet": bet})
}

// allowed screenshot extensions
var screenshotExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// UploadScreenshot stores a bookmaker screenshot for a bet under a
// uuid filename, replacing any previous one.
func (h *BetHandler) UploadScreenshot(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid bet id")
		return
	}

	var bet models.Bet
	if err := h.DB.First(&bet, uint(id)).Error; err != nil {
		writeError(c, err)
		return
	}

	file, err := c.FormFile("screenshot")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "screenshot file required")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !screenshotExts[ext] {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unsupported file type")
		return
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}

	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(h.UploadDir, filename)); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}

	// drop the previous file, if any
	if bet.Screenshot != "" {
		_ = os.Remove(filepath.Join(h.UploadDir, bet.Screenshot))
	}

	if err := h.DB.Model(&bet).Update("screenshot", filename).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}

	util.Success(c, util.Response{"screenshot": filename})
}
