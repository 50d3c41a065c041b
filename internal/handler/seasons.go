package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/spacedlevo/betting-syndicate/internal/models"
	"github.com/spacedlevo/betting-syndicate/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SeasonHandler manages seasons. At most one season is active at a time:
// both Create and Activate clear the flag on every other season inside
// the same transaction that sets it.
type SeasonHandler struct {
	DB *gorm.DB
}

func NewSeasonHandler(db *gorm.DB) *SeasonHandler {
	return &SeasonHandler{DB: db}
}

type createSeasonReq struct {
	Name      string `json:"name" binding:"required,max=100"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date"`
	PlayerIDs []uint `json:"player_ids"`
}

type updateSeasonReq struct {
	EndDate string `json:"end_date"`
}

// List returns all seasons, newest first, with their frozen status.
func (h *SeasonHandler) List(c *gin.Context) {
	var seasons []models.Season
	if err := h.DB.Order("start_date DESC").Find(&seasons).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	now := time.Now()
	items := make([]util.Response, 0, len(seasons))
	for i := range seasons {
		items = append(items, util.Response{
			"season":    seasons[i],
			"is_frozen": seasons[i].Frozen(now),
		})
	}

	util.Success(c, util.Response{"seasons": items})
}

// Create starts a new season as the active one and enrols the given
// players from the start date.
func (h *SeasonHandler) Create(c *gin.Context) {
	var req createSeasonReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	startDate, err := util.ParseDate(req.StartDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	var endDate *time.Time
	if req.EndDate != "" {
		d, err := util.ParseDate(req.EndDate)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		endDate = &d
	}

	season := models.Season{
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  true,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		// deactivate-all-then-activate-one keeps the single-active
		// invariant inside one transaction
		if err := tx.Model(&models.Season{}).Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Create(&season).Error; err != nil {
			return err
		}
		for _, pid := range req.PlayerIDs {
			ps := models.PlayerSeason{
				PlayerID:   pid,
				SeasonID:   season.ID,
				JoinedDate: startDate,
				IsActive:   true,
			}
			if err := tx.Create(&ps).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}

	util.Success(c, util.Response{"season": season})
}

// Activate makes the given season the single active one.
func (h *SeasonHandler) Activate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid season id")
		return
	}

	var season models.Season
	if err := h.DB.First(&season, uint(id)).Error; err != nil {
		writeError(c, err)
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Season{}).Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&season).Update("is_active", true).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}

	util.Success(c, util.Response{"season": season})
}

// Update sets or clears a season's end date. An end date in the past
// freezes the season for new bets and contributions.
func (h *SeasonHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid season id")
		return
	}

	var req updateSeasonReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	var season models.Season
	if err := h.DB.First(&season, uint(id)).Error; err != nil {
		writeError(c, err)
		return
	}

	var endDate *time.Time
	if req.EndDate != "" {
		d, err := util.ParseDate(req.EndDate)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		endDate = &d
	}

	season.EndDate = endDate
	if err := h.DB.Save(&season).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}

	util.Success(c, util.Response{"season": season, "is_frozen": season.Frozen(time.Now())})
}
