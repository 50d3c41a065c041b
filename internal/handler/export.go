package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spacedlevo/betting-syndicate/internal/ledger"
	"github.com/spacedlevo/betting-syndicate/internal/models"
	"github.com/spacedlevo/betting-syndicate/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler downloads the scoped ledger as CSV or XLSX.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeaders = []string{"Date", "Player", "Kind", "Amount", "Description", "Recorded"}

// exportEntries fetches the full (unpaginated) scoped ledger. The scope
// defaults to the active season; ?season_id exports another one.
func (h *ExportHandler) exportEntries(c *gin.Context) ([]models.Entry, error) {
	filter := ledger.EntryFilter{}
	if s := c.Query("season_id"); s != "" {
		if id, err := strconv.ParseUint(s, 10, 32); err == nil {
			sid := uint(id)
			filter.SeasonID = &sid
		}
	} else {
		season, err := activeSeason(h.DB)
		if err != nil {
			return nil, err
		}
		if season != nil {
			filter.SeasonID = &season.ID
		}
	}

	entries, _, err := ledger.Entries(h.DB, filter)
	return entries, err
}

func entryRow(e *models.Entry) []string {
	player := ""
	if e.Player != nil {
		player = e.Player.Name
	}
	return []string{
		e.EntryDate.Format("2006-01-02"),
		player,
		string(e.Kind),
		e.Amount.StringFixed(2),
		e.Description,
		e.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// CSV streams the ledger as a CSV attachment.
func (h *ExportHandler) CSV(c *gin.Context) {
	entries, err := h.exportEntries(c)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"ledger_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range entries {
		writer.Write(entryRow(&entries[i]))
	}
}

// XLSX streams the ledger as a spreadsheet attachment.
func (h *ExportHandler) XLSX(c *gin.Context) {
	entries, err := h.exportEntries(c)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	f := excelize.NewFile()
	sheetName := "Ledger"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create sheet failed")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, head := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, head)
	}

	for idx := range entries {
		row := idx + 2
		for col, value := range entryRow(&entries[idx]) {
			cell := fmt.Sprintf("%c%d", 'A'+col, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 18)
	f.SetColWidth(sheetName, "C", "C", 14)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 34)
	f.SetColWidth(sheetName, "F", "F", 20)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"ledger_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
