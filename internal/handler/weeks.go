package handler

import (
	"net/http"
	"strconv"

	"github.com/spacedlevo/betting-syndicate/internal/models"
	"github.com/spacedlevo/betting-syndicate/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// WeekHandler manages weekly rounds and their two-player assignments.
type WeekHandler struct {
	DB *gorm.DB
}

func NewWeekHandler(db *gorm.DB) *WeekHandler {
	return &WeekHandler{DB: db}
}

type createWeekReq struct {
	SeasonID   uint   `json:"season_id" binding:"required"`
	WeekNumber int    `json:"week_number" binding:"required,min=1"`
	StartDate  string `json:"start_date" binding:"required"`
	Player1ID  uint   `json:"player1_id" binding:"required"`
	Player2ID  uint   `json:"player2_id" binding:"required"`
}

// List returns the weeks of a season with their assignments.
func (h *WeekHandler) List(c *gin.Context) {
	seasonID, err := strconv.ParseUint(c.Query("season_id"), 10, 32)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "season_id required")
		return
	}

	var weeks []models.Week
	if err := h.DB.Where("season_id = ?", uint(seasonID)).
		Order("week_number").Find(&weeks).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]util.Response, 0, len(weeks))
	for i := range weeks {
		var assignments []models.WeekAssignment
		if err := h.DB.Where("week_id = ?", weeks[i].ID).
			Preload("Player").
			Order("assignment_order").Find(&assignments).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
			return
		}
		items = append(items, util.Response{
			"week":        weeks[i],
			"assignments": assignments,
		})
	}

	util.Success(c, util.Response{"weeks": items})
}

// Create adds a week and assigns its two duty players in one transaction.
// A week always has exactly two assignments, orders 1 and 2.
func (h *WeekHandler) Create(c *gin.Context) {
	var req createWeekReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if req.Player1ID == req.Player2ID {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "week needs two different players")
		return
	}

	startDate, err := util.ParseDate(req.StartDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	week := models.Week{
		SeasonID:   req.SeasonID,
		WeekNumber: req.WeekNumber,
		StartDate:  startDate,
		EndDate:    startDate.AddDate(0, 0, 6),
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var season models.Season
		if err := tx.First(&season, req.SeasonID).Error; err != nil {
			return err
		}
		for _, pid := range []uint{req.Player1ID, req.Player2ID} {
			var player models.Player
			if err := tx.First(&player, pid).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(&week).Error; err != nil {
			return err
		}
		for order, pid := range []uint{req.Player1ID, req.Player2ID} {
			a := models.WeekAssignment{
				WeekID:          week.ID,
				PlayerID:        pid,
				AssignmentOrder: order + 1,
			}
			if err := tx.Create(&a).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}

	util.Success(c, util.Response{"week": week})
}
