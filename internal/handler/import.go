package handler

import (
	"net/http"
	"strconv"

	"github.com/spacedlevo/betting-syndicate/internal/importer"
	"github.com/spacedlevo/betting-syndicate/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ImportHandler accepts the historical CSV feeds. A batch either lands
// completely or not at all, so a failed upload can be fixed and re-sent
// without producing duplicates.
type ImportHandler struct {
	DB *gorm.DB
}

func NewImportHandler(db *gorm.DB) *ImportHandler {
	return &ImportHandler{DB: db}
}

// Transactions imports the ledger feed (Date,Player,Amount,Transaction).
func (h *ImportHandler) Transactions(c *gin.Context) {
	seasonName := c.PostForm("season_name")
	if seasonName == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "season_name is required")
		return
	}
	seasonStart, err := util.ParseDate(c.PostForm("season_start"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "csv file required")
		return
	}
	f, err := file.Open()
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "cannot read upload")
		return
	}
	defer f.Close()

	result, err := importer.Run(h.DB, f, seasonName, seasonStart)
	if err != nil {
		writeError(c, err)
		return
	}

	util.Success(c, util.Response{"result": result})
}

// Assignments imports the week calendar (start_date,player1,player2).
func (h *ImportHandler) Assignments(c *gin.Context) {
	seasonID, err := strconv.ParseUint(c.PostForm("season_id"), 10, 32)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "season_id is required")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "csv file required")
		return
	}
	f, err := file.Open()
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "cannot read upload")
		return
	}
	defer f.Close()

	weeks, err := importer.ImportAssignments(h.DB, f, uint(seasonID))
	if err != nil {
		writeError(c, err)
		return
	}

	util.Success(c, util.Response{"weeks_imported": weeks})
}
