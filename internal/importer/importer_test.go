package importer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spacedlevo/betting-syndicate/internal/database"
	"github.com/spacedlevo/betting-syndicate/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

var seasonStart = time.Date(2025, 8, 11, 0, 0, 0, 0, time.UTC)

const goodFeed = `Date,Player,Amount,Transaction
11/08/2025,Tom,5.00,paid in
11/08/2025,Dan,5.00,paid in
12/08/2025,Tom,10.00,placed
13/08/2025,Tom,60.00,won
14/08/2025,Dan,20.00,paid out
`

func TestRun_ImportsFullFeed(t *testing.T) {
	db := newTestDB(t)

	res, err := Run(db, strings.NewReader(goodFeed), "2025-2026 Season", seasonStart)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Players != 2 {
		t.Errorf("players = %d, want 2", res.Players)
	}
	if res.Contributions != 2 || res.BetsPlaced != 1 || res.Winnings != 1 || res.Payouts != 1 {
		t.Errorf("counts = %+v, want 2/1/1/1", res)
	}

	var season models.Season
	if err := db.First(&season, res.SeasonID).Error; err != nil {
		t.Fatalf("season not created: %v", err)
	}
	if !season.IsActive {
		t.Error("imported season should be active")
	}

	var entries int64
	db.Model(&models.Entry{}).Count(&entries)
	if entries != 5 {
		t.Errorf("ledger entries = %d, want 5", entries)
	}

	// the "placed" row creates a pending bet with its stake negated in
	// the ledger
	var bet models.Bet
	if err := db.First(&bet).Error; err != nil {
		t.Fatalf("bet not created: %v", err)
	}
	if bet.Status != models.BetPending {
		t.Errorf("bet status = %s, want pending", bet.Status)
	}
	var placed models.Entry
	if err := db.Where("kind = ?", models.KindBetPlaced).First(&placed).Error; err != nil {
		t.Fatalf("bet_placed entry missing: %v", err)
	}
	if !placed.Amount.Equal(decimal.RequireFromString("-10.00")) {
		t.Errorf("bet_placed amount = %s, want -10.00", placed.Amount)
	}

	var payout models.Entry
	if err := db.Where("kind = ?", models.KindPayout).First(&payout).Error; err != nil {
		t.Fatalf("payout entry missing: %v", err)
	}
	if !payout.Amount.Equal(decimal.RequireFromString("-20.00")) {
		t.Errorf("payout amount = %s, want -20.00", payout.Amount)
	}
}

func TestRun_UnknownLabelRollsBackBatch(t *testing.T) {
	db := newTestDB(t)

	if _, err := Run(db, strings.NewReader(goodFeed), "2025-2026 Season", seasonStart); err != nil {
		t.Fatalf("first import error = %v", err)
	}
	var before int64
	db.Model(&models.Entry{}).Count(&before)

	badFeed := `Date,Player,Amount,Transaction
18/08/2025,Tom,5.00,paid in
18/08/2025,Dan,5.00,refunded
`
	_, err := Run(db, strings.NewReader(badFeed), "2025-2026 Season", seasonStart)
	if err == nil {
		t.Fatal("Run() with unknown label should fail")
	}
	var rowErr *RowError
	if !errors.As(err, &rowErr) {
		t.Fatalf("error = %v, want *RowError", err)
	}
	if rowErr.Line != 3 {
		t.Errorf("row error line = %d, want 3", rowErr.Line)
	}

	var after int64
	db.Model(&models.Entry{}).Count(&after)
	if after != before {
		t.Errorf("entries after failed import = %d, want %d", after, before)
	}
}

func TestRun_BadAmountFailsBeforeAnyWrite(t *testing.T) {
	db := newTestDB(t)

	badFeed := `Date,Player,Amount,Transaction
11/08/2025,Tom,5.00,paid in
11/08/2025,Dan,five quid,paid in
`
	_, err := Run(db, strings.NewReader(badFeed), "2025-2026 Season", seasonStart)
	var rowErr *RowError
	if !errors.As(err, &rowErr) {
		t.Fatalf("error = %v, want *RowError", err)
	}
	if rowErr.Line != 3 {
		t.Errorf("row error line = %d, want 3", rowErr.Line)
	}

	var seasons, entries int64
	db.Model(&models.Season{}).Count(&seasons)
	db.Model(&models.Entry{}).Count(&entries)
	if seasons != 0 || entries != 0 {
		t.Errorf("seasons = %d, entries = %d after parse failure, want 0 and 0", seasons, entries)
	}
}

func TestRun_SkipsBlankRows(t *testing.T) {
	db := newTestDB(t)

	feed := "Date,Player,Amount,Transaction\n11/08/2025,Tom,5.00,paid in\n,,,\n"
	res, err := Run(db, strings.NewReader(feed), "2025-2026 Season", seasonStart)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Contributions != 1 {
		t.Errorf("contributions = %d, want 1", res.Contributions)
	}
}

func TestImportAssignments(t *testing.T) {
	db := newTestDB(t)
	if _, err := Run(db, strings.NewReader(goodFeed), "2025-2026 Season", seasonStart); err != nil {
		t.Fatalf("seed import error = %v", err)
	}
	var season models.Season
	if err := db.First(&season).Error; err != nil {
		t.Fatalf("load season: %v", err)
	}

	calendar := `11/08/2025,Tom,Dan
18/08/2025,Dan,Tom
`
	weeks, err := ImportAssignments(db, strings.NewReader(calendar), season.ID)
	if err != nil {
		t.Fatalf("ImportAssignments() error = %v", err)
	}
	if weeks != 2 {
		t.Errorf("weeks = %d, want 2", weeks)
	}

	var week models.Week
	if err := db.Where("season_id = ? AND week_number = ?", season.ID, 1).First(&week).Error; err != nil {
		t.Fatalf("week 1 missing: %v", err)
	}
	if !week.EndDate.Equal(week.StartDate.AddDate(0, 0, 6)) {
		t.Errorf("week end = %s, want start + 6 days", week.EndDate)
	}

	var assignments []models.WeekAssignment
	if err := db.Where("week_id = ?", week.ID).Order("assignment_order").Find(&assignments).Error; err != nil {
		t.Fatalf("load assignments: %v", err)
	}
	if len(assignments) != 2 {
		t.Fatalf("assignments = %d, want 2", len(assignments))
	}
	if assignments[0].AssignmentOrder != 1 || assignments[1].AssignmentOrder != 2 {
		t.Errorf("assignment orders = %d,%d, want 1,2", assignments[0].AssignmentOrder, assignments[1].AssignmentOrder)
	}
}

func TestImportAssignments_UnknownPlayerRollsBack(t *testing.T) {
	db := newTestDB(t)
	if _, err := Run(db, strings.NewReader(goodFeed), "2025-2026 Season", seasonStart); err != nil {
		t.Fatalf("seed import error = %v", err)
	}
	var season models.Season
	if err := db.First(&season).Error; err != nil {
		t.Fatalf("load season: %v", err)
	}

	calendar := `11/08/2025,Tom,Dan
18/08/2025,Dan,Nobody
`
	_, err := ImportAssignments(db, strings.NewReader(calendar), season.ID)
	var rowErr *RowError
	if !errors.As(err, &rowErr) {
		t.Fatalf("error = %v, want *RowError", err)
	}
	if rowErr.Line != 2 {
		t.Errorf("row error line = %d, want 2", rowErr.Line)
	}

	var weeks int64
	db.Model(&models.Week{}).Count(&weeks)
	if weeks != 0 {
		t.Errorf("weeks after rollback = %d, want 0", weeks)
	}
}
