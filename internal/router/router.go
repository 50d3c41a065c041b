package router

import (
	"github.com/spacedlevo/betting-syndicate/internal/config"
	"github.com/spacedlevo/betting-syndicate/internal/handler"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and the API surface.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// screenshots are served straight from the upload directory
	r.Static("/uploads/screenshots", cfg.Upload.Dir)

	api := r.Group("/api")

	dashboardHandler := handler.NewDashboardHandler(db, cfg)
	api.GET("/dashboard", dashboardHandler.Overview)
	api.GET("/summary", dashboardHandler.Summary)

	ledgerHandler := handler.NewLedgerHandler(db, cfg)
	api.GET("/ledger", ledgerHandler.List)
	api.POST("/ledger/contributions", ledgerHandler.Contribute)
	api.POST("/ledger/payouts", ledgerHandler.Payout)

	betHandler := handler.NewBetHandler(db, cfg)
	api.GET("/bets", betHandler.List)
	api.POST("/bets", betHandler.Create)
	api.GET("/bets/:id", betHandler.Get)
	api.POST("/bets/:id/result", betHandler.Settle)
	api.POST("/bets/:id/screenshot", betHandler.UploadScreenshot)

	playerHandler := handler.NewPlayerHandler(db, cfg)
	api.GET("/players", playerHandler.List)
	api.POST("/players", playerHandler.Create)
	api.GET("/players/:id", playerHandler.Get)
	api.POST("/players/:id/active", playerHandler.SetActive)
	api.POST("/players/:id/membership", playerHandler.SetMembership)

	seasonHandler := handler.NewSeasonHandler(db)
	api.GET("/seasons", seasonHandler.List)
	api.POST("/seasons", seasonHandler.Create)
	api.POST("/seasons/:id/activate", seasonHandler.Activate)
	api.POST("/seasons/:id/edit", seasonHandler.Update)

	weekHandler := handler.NewWeekHandler(db)
	api.GET("/weeks", weekHandler.List)
	api.POST("/weeks", weekHandler.Create)

	importHandler := handler.NewImportHandler(db)
	api.POST("/import/transactions", importHandler.Transactions)
	api.POST("/import/assignments", importHandler.Assignments)

	exportHandler := handler.NewExportHandler(db)
	api.GET("/export/csv", exportHandler.CSV)
	api.GET("/export/xlsx", exportHandler.XLSX)

	return r
}
