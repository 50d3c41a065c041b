package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/spacedlevo/betting-syndicate/internal/config"
	"github.com/spacedlevo/betting-syndicate/internal/ledger"
	"github.com/spacedlevo/betting-syndicate/internal/models"
	"github.com/spacedlevo/betting-syndicate/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LedgerHandler serves the raw ledger listing and the two writer commands
// that are not tied to a bet: contributions and payouts.
type LedgerHandler struct {
	DB     *gorm.DB
	Writer *ledger.Writer
	Cfg    *config.Config
}

func NewLedgerHandler(db *gorm.DB, cfg *config.Config) *LedgerHandler {
	return &LedgerHandler{DB: db, Writer: ledger.NewWriter(db), Cfg: cfg}
}

// ---------- request structs ----------

type contributionReq struct {
	PlayerID  uint   `json:"player_id" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	EntryDate string `json:"entry_date" binding:"required"`
	WeekID    *uint  `json:"week_id"`
	Note      string `json:"note"`
}

type payoutReq struct {
	PlayerID  uint   `json:"player_id" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	EntryDate string `json:"entry_date" binding:"required"`
	Note      string `json:"note"`
}

// List returns ledger entries for the active season with optional
// player/kind/bet filters, newest first, paginated.
func (h *LedgerHandler) List(c *gin.Context) {
	season, err := activeSeason(h.DB)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	filter := ledger.EntryFilter{}
	if season != nil {
		filter.SeasonID = &season.ID
	}
	if s := c.Query("season_id"); s != "" {
		if id, err := strconv.ParseUint(s, 10, 32); err == nil {
			sid := uint(id)
			filter.SeasonID = &sid
		}
	}
	if s := c.Query("player_id"); s != "" {
		if id, err := strconv.ParseUint(s, 10, 32); err == nil {
			pid := uint(id)
			filter.PlayerID = &pid
		}
	}
	if s := c.Query("kind"); s != "" {
		kind := models.EntryKind(s)
		if !kind.Valid() {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown entry kind")
			return
		}
		filter.Kind = &kind
	}
	if s := c.Query("bet_id"); s != "" {
		if id, err := strconv.ParseUint(s, 10, 32); err == nil {
			bid := uint(id)
			filter.BetID = &bid
		}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	perPage := h.Cfg.App.PageSize
	if perPage <= 0 {
		perPage = 50
	}
	filter.Limit = perPage
	filter.Offset = (page - 1) * perPage

	entries, total, err := ledger.Entries(h.DB, filter)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	util.Success(c, util.Response{
		"entries":  entries,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// Contribute records a weekly contribution against the active season.
func (h *LedgerHandler) Contribute(c *gin.Context) {
	var req contributionReq
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

	amount, err := util.ParseAmount(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	entryDate, err := util.ParseDate(req.EntryDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	entry, err := h.Writer.RecordContribution(ledger.EntryInput{
		PlayerID:    req.PlayerID,
		SeasonID:    season.ID,
		WeekID:      req.WeekID,
		Amount:      amount,
		EntryDate:   entryDate,
		Description: req.Note,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	util.Success(c, util.Response{"entry": entry})
}

// Payout records a withdrawal to a player from the active season.
func (h *LedgerHandler) Payout(c *gin.Context) {
	var req payoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	season, err := activeSeason(h.DB)
	if err != nil || season == nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "no active season")
		return
	}

	amount, err := util.ParseAmount(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	entryDate, err := util.ParseDate(req.EntryDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	entry, err := h.Writer.RecordPayout(ledger.EntryInput{
		PlayerID:    req.PlayerID,
		SeasonID:    season.ID,
		Amount:      amount,
		EntryDate:   entryDate,
		Description: req.Note,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	util.Success(c, util.Response{"entry": entry})
}
