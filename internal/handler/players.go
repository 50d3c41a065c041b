package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spacedlevo/betting-syndicate/internal/calc"
	"github.com/spacedlevo/betting-syndicate/internal/config"
	"github.com/spacedlevo/betting-syndicate/internal/models"
	"github.com/spacedlevo/betting-syndicate/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PlayerHandler manages the roster and per-season memberships.
type PlayerHandler struct {
	DB    *gorm.DB
	Rules calc.Rules
}

func NewPlayerHandler(db *gorm.DB, cfg *config.Config) *PlayerHandler {
	return &PlayerHandler{DB: db, Rules: rulesFromConfig(cfg)}
}

type createPlayerReq struct {
	Name  string `json:"name" binding:"required,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
}

type membershipReq struct {
	SeasonID uint `json:"season_id" binding:"required"`
	Active   bool `json:"active"`
}

// List returns all players, active first, by name.
func (h *PlayerHandler) List(c *gin.Context) {
	var players []models.Player
	if err := h.DB.Order("is_active DESC, name").Find(&players).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"players": players})
}

// Get returns one player with their figures for the active season.
func (h *PlayerHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid player id")
		return
	}

	var player models.Player
	if err := h.DB.First(&player, uint(id)).Error; err != nil {
		writeError(c, err)
		return
	}

	resp := util.Response{"player": player}

	season, err := activeSeason(h.DB)
	if err != nil {
		writeError(c, err)
		return
	}
	if season != nil {
		sid := season.ID
		pid := player.ID
		now := time.Now()

		contributions, err := calc.TotalContributions(h.DB, &sid, &pid)
		if err != nil {
			writeError(c, err)
			return
		}
		betsPlaced, err := calc.NetBetsPlaced(h.DB, &sid, &pid)
		if err != nil {
			writeError(c, err)
			return
		}
		won, err := calc.TotalWinnings(h.DB, &sid, &pid)
		if err != nil {
			writeError(c, err)
			return
		}
		position, err := calc.NetPosition(h.DB, pid, &sid)
		if err != nil {
			writeError(c, err)
			return
		}
		betBalance, err := calc.PlayerBetBalance(h.DB, pid, &sid, h.Rules, now)
		if err != nil {
			writeError(c, err)
			return
		}
		payout, err := calc.PlayerPayoutAmount(h.DB, pid, sid, h.Rules, now)
		if err != nil {
			writeError(c, err)
			return
		}

		resp["season"] = season
		resp["contributions"] = contributions
		resp["bets_placed"] = betsPlaced
		resp["won"] = won
		resp["net_position"] = position
		resp["bet_balance"] = betBalance
		resp["payout_if_cashing_out"] = payout
	}

	util.Success(c, resp)
}

// Create adds a player to the roster.
func (h *PlayerHandler) Create(c *gin.Context) {
	var req createPlayerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name is required")
		return
	}

	player := models.Player{Name: req.Name, Email: req.Email, IsActive: true}
	if err := h.DB.Create(&player).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}

	util.Success(c, util.Response{"player": player})
}

// SetActive toggles a player's global active flag. Players are never
// deleted: their ledger history has to stay intact.
func (h *PlayerHandler) SetActive(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid player id")
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	var player models.Player
	if err := h.DB.First(&player, uint(id)).Error; err != nil {
		writeError(c, err)
		return
	}

	if err := h.DB.Model(&player).Update("is_active", req.Active).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}

	util.Success(c, util.Response{"player": player})
}

// SetMembership joins a player to a season or toggles their per-season
// active flag.
func (h *PlayerHandler) SetMembership(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid player id")
		return
	}

	var req membershipReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	var player models.Player
	if err := h.DB.First(&player, uint(id)).Error; err != nil {
		writeError(c, err)
		return
	}
	var season models.Season
	if err := h.DB.First(&season, req.SeasonID).Error; err != nil {
		writeError(c, err)
		return
	}

	var ps models.PlayerSeason
	err = h.DB.Where("player_id = ? AND season_id = ?", player.ID, season.ID).First(&ps).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		ps = models.PlayerSeason{
			PlayerID:   player.ID,
			SeasonID:   season.ID,
			JoinedDate: time.Now(),
			IsActive:   req.Active,
		}
		err = h.DB.Create(&ps).Error
	case err == nil:
		err = h.DB.Model(&ps).Update("is_active", req.Active).Error
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}

	util.Success(c, util.Response{"membership": ps})
}
