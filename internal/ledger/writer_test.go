package ledger

import (
	"errors"
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
	// a single connection keeps every session on the same in-memory db
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

// seedSeason creates an active season starting Monday 2025-08-11 with the
// named players enrolled.
func seedSeason(t *testing.T, db *gorm.DB, names ...string) (*models.Season, []models.Player) {
	t.Helper()
	season := models.Season{
		Name:      "2025-2026 Season",
		StartDate: time.Date(2025, 8, 11, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
	if err := db.Create(&season).Error; err != nil {
		t.Fatalf("create season: %v", err)
	}

	players := make([]models.Player, 0, len(names))
	for _, name := range names {
		p := models.Player{Name: name, IsActive: true}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("create player %s: %v", name, err)
		}
		ps := models.PlayerSeason{
			PlayerID:   p.ID,
			SeasonID:   season.ID,
			JoinedDate: season.StartDate,
			IsActive:   true,
		}
		if err := db.Create(&ps).Error; err != nil {
			t.Fatalf("enrol player %s: %v", name, err)
		}
		players = append(players, p)
	}
	return &season, players
}

func countEntries(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Entry{}).Count(&n).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	return n
}

func TestRecordContribution_StoredPositive(t *testing.T) {
	db := newTestDB(t)
	season, players := seedSeason(t, db, "Tom")
	w := NewWriter(db)

	entry, err := w.RecordContribution(EntryInput{
		PlayerID:  players[0].ID,
		SeasonID:  season.ID,
		Amount:    decimal.RequireFromString("5.00"),
		EntryDate: season.StartDate,
	})
	if err != nil {
		t.Fatalf("RecordContribution() error = %v", err)
	}
	if !entry.Amount.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("amount = %s, want 5.00", entry.Amount)
	}
	if entry.Kind != models.KindContribution {
		t.Errorf("kind = %s, want %s", entry.Kind, models.KindContribution)
	}
	if entry.Description == "" {
		t.Error("expected a default description")
	}
}

func TestRecordPayout_StoredNegative(t *testing.T) {
	db := newTestDB(t)
	season, players := seedSeason(t, db, "Tom")
	w := NewWriter(db)

	entry, err := w.RecordPayout(EntryInput{
		PlayerID:  players[0].ID,
		SeasonID:  season.ID,
		Amount:    decimal.RequireFromString("20.00"),
		EntryDate: season.StartDate,
	})
	if err != nil {
		t.Fatalf("RecordPayout() error = %v", err)
	}
	if !entry.Amount.Equal(decimal.RequireFromString("-20.00")) {
		t.Errorf("amount = %s, want -20.00", entry.Amount)
	}
}

func TestWriter_RejectsNonPositiveAmounts(t *testing.T) {
	db := newTestDB(t)
	season, players := seedSeason(t, db, "Tom")
	w := NewWriter(db)

	for _, amount := range []string{"0", "-5.00"} {
		in := EntryInput{
			PlayerID:  players[0].ID,
			SeasonID:  season.ID,
			Amount:    decimal.RequireFromString(amount),
			EntryDate: season.StartDate,
		}
		if _, err := w.RecordContribution(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("RecordContribution(%s) error = %v, want ErrInvalidAmount", amount, err)
		}
		if _, err := w.RecordPayout(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("RecordPayout(%s) error = %v, want ErrInvalidAmount", amount, err)
		}
	}
	if n := countEntries(t, db); n != 0 {
		t.Errorf("entries written = %d, want 0", n)
	}
}

func TestWriter_UnknownReferences(t *testing.T) {
	db := newTestDB(t)
	season, players := seedSeason(t, db, "Tom")
	w := NewWriter(db)

	five := decimal.RequireFromString("5.00")
	date := season.StartDate

	_, err := w.RecordContribution(EntryInput{
		PlayerID: 999, SeasonID: season.ID, Amount: five, EntryDate: date,
	})
	if !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("unknown player: error = %v, want ErrUnknownPlayer", err)
	}

	_, err = w.RecordContribution(EntryInput{
		PlayerID: players[0].ID, SeasonID: 999, Amount: five, EntryDate: date,
	})
	if !errors.Is(err, ErrUnknownSeason) {
		t.Errorf("unknown season: error = %v, want ErrUnknownSeason", err)
	}

	missing := uint(999)
	_, err = w.RecordBetVoid(EntryInput{
		PlayerID: players[0].ID, SeasonID: season.ID, BetID: &missing, Amount: five, EntryDate: date,
	})
	if !errors.Is(err, ErrUnknownBet) {
		t.Errorf("unknown bet: error = %v, want ErrUnknownBet", err)
	}

	_, err = w.RecordBetVoid(EntryInput{
		PlayerID: players[0].ID, SeasonID: season.ID, Amount: five, EntryDate: date,
	})
	if !errors.Is(err, ErrUnknownBet) {
		t.Errorf("missing bet ref: error = %v, want ErrUnknownBet", err)
	}

	if n := countEntries(t, db); n != 0 {
		t.Errorf("entries written = %d, want 0", n)
	}
}

func TestPlaceBet_CreatesBetAndEntry(t *testing.T) {
	db := newTestDB(t)
	season, players := seedSeason(t, db, "Tom")
	w := NewWriter(db)

	bet := models.Bet{
		PlacedByPlayerID: players[0].ID,
		Stake:            decimal.RequireFromString("10.00"),
		Description:      "Arsenal to win",
		Odds:             "2/1",
		BetDate:          season.StartDate,
	}
	entry, err := w.PlaceBet(&bet, season.ID, "tom")
	if err != nil {
		t.Fatalf("PlaceBet() error = %v", err)
	}

	if bet.ID == 0 {
		t.Fatal("bet was not persisted")
	}
	if bet.Status != models.BetPending {
		t.Errorf("bet status = %s, want pending", bet.Status)
	}
	if !entry.Amount.Equal(decimal.RequireFromString("-10.00")) {
		t.Errorf("entry amount = %s, want -10.00", entry.Amount)
	}
	if entry.BetID == nil || *entry.BetID != bet.ID {
		t.Errorf("entry bet id = %v, want %d", entry.BetID, bet.ID)
	}
}

func TestPlaceBet_RollsBackOnUnknownSeason(t *testing.T) {
	db := newTestDB(t)
	_, players := seedSeason(t, db, "Tom")
	w := NewWriter(db)

	bet := models.Bet{
		PlacedByPlayerID: players[0].ID,
		Stake:            decimal.RequireFromString("10.00"),
		Description:      "Arsenal to win",
		BetDate:          time.Date(2025, 8, 11, 0, 0, 0, 0, time.UTC),
	}
	if _, err := w.PlaceBet(&bet, 999, "tom"); !errors.Is(err, ErrUnknownSeason) {
		t.Fatalf("PlaceBet() error = %v, want ErrUnknownSeason", err)
	}

	var bets int64
	db.Model(&models.Bet{}).Count(&bets)
	if bets != 0 {
		t.Errorf("bet rows after rollback = %d, want 0", bets)
	}
	if n := countEntries(t, db); n != 0 {
		t.Errorf("entries after rollback = %d, want 0", n)
	}
}

func TestSettleBet_Won(t *testing.T) {
	db := newTestDB(t)
	season, players := seedSeason(t, db, "Tom")
	w := NewWriter(db)

	bet := models.Bet{
		PlacedByPlayerID: players[0].ID,
		Stake:            decimal.RequireFromString("10.00"),
		Description:      "Acca",
		BetDate:          season.StartDate,
	}
	if _, err := w.PlaceBet(&bet, season.ID, "tom"); err != nil {
		t.Fatalf("PlaceBet() error = %v", err)
	}

	resultDate := season.StartDate.AddDate(0, 0, 1)
	winnings := decimal.RequireFromString("60.00")
	if err := w.SettleBet(bet.ID, season.ID, models.BetWon, resultDate, winnings, "tom"); err != nil {
		t.Fatalf("SettleBet() error = %v", err)
	}

	var settled models.Bet
	if err := db.First(&settled, bet.ID).Error; err != nil {
		t.Fatalf("reload bet: %v", err)
	}
	if settled.Status != models.BetWon {
		t.Errorf("status = %s, want won", settled.Status)
	}
	if settled.Winnings == nil || !settled.Winnings.Equal(winnings) {
		t.Errorf("winnings = %v, want 60.00", settled.Winnings)
	}

	var entry models.Entry
	if err := db.Where("kind = ?", models.KindWinnings).First(&entry).Error; err != nil {
		t.Fatalf("winnings entry missing: %v", err)
	}
	if !entry.Amount.Equal(winnings) {
		t.Errorf("winnings entry amount = %s, want 60.00", entry.Amount)
	}
	if entry.PlayerID != players[0].ID {
		t.Errorf("winnings credited to player %d, want %d", entry.PlayerID, players[0].ID)
	}
}

func TestSettleBet_VoidReturnsStake(t *testing.T) {
	db := newTestDB(t)
	season, players := seedSeason(t, db, "Tom")
	w := NewWriter(db)

	bet := models.Bet{
		PlacedByPlayerID: players[0].ID,
		Stake:            decimal.RequireFromString("10.00"),
		Description:      "Postponed match",
		BetDate:          season.StartDate,
	}
	if _, err := w.PlaceBet(&bet, season.ID, "tom"); err != nil {
		t.Fatalf("PlaceBet() error = %v", err)
	}
	if err := w.SettleBet(bet.ID, season.ID, models.BetVoid, season.StartDate, decimal.Zero, "tom"); err != nil {
		t.Fatalf("SettleBet() error = %v", err)
	}

	var entry models.Entry
	if err := db.Where("kind = ?", models.KindBetVoid).First(&entry).Error; err != nil {
		t.Fatalf("void entry missing: %v", err)
	}
	if !entry.Amount.Equal(bet.Stake) {
		t.Errorf("void entry amount = %s, want %s", entry.Amount, bet.Stake)
	}
}

func TestSettleBet_LostWritesNothing(t *testing.T) {
	db := newTestDB(t)
	season, players := seedSeason(t, db, "Tom")
	w := NewWriter(db)

	bet := models.Bet{
		PlacedByPlayerID: players[0].ID,
		Stake:            decimal.RequireFromString("10.00"),
		Description:      "Acca",
		BetDate:          season.StartDate,
	}
	if _, err := w.PlaceBet(&bet, season.ID, "tom"); err != nil {
		t.Fatalf("PlaceBet() error = %v", err)
	}
	before := countEntries(t, db)

	if err := w.SettleBet(bet.ID, season.ID, models.BetLost, season.StartDate, decimal.Zero, "tom"); err != nil {
		t.Fatalf("SettleBet() error = %v", err)
	}
	if n := countEntries(t, db); n != before {
		t.Errorf("entries after losing bet = %d, want %d", n, before)
	}

	var settled models.Bet
	db.First(&settled, bet.ID)
	if settled.Status != models.BetLost {
		t.Errorf("status = %s, want lost", settled.Status)
	}
}

func TestSettleBet_WonNeedsPositiveWinnings(t *testing.T) {
	db := newTestDB(t)
	season, players := seedSeason(t, db, "Tom")
	w := NewWriter(db)

	bet := models.Bet{
		PlacedByPlayerID: players[0].ID,
		Stake:            decimal.RequireFromString("10.00"),
		Description:      "Acca",
		BetDate:          season.StartDate,
	}
	if _, err := w.PlaceBet(&bet, season.ID, "tom"); err != nil {
		t.Fatalf("PlaceBet() error = %v", err)
	}

	err := w.SettleBet(bet.ID, season.ID, models.BetWon, season.StartDate, decimal.Zero, "tom")
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("SettleBet() error = %v, want ErrInvalidAmount", err)
	}
}

func TestSettleBet_RejectsNonSettlementStatus(t *testing.T) {
	db := newTestDB(t)
	season, players := seedSeason(t, db, "Tom")
	w := NewWriter(db)

	bet := models.Bet{
		PlacedByPlayerID: players[0].ID,
		Stake:            decimal.RequireFromString("10.00"),
		Description:      "Acca",
		BetDate:          season.StartDate,
	}
	if _, err := w.PlaceBet(&bet, season.ID, "tom"); err != nil {
		t.Fatalf("PlaceBet() error = %v", err)
	}

	for _, status := range []models.BetStatus{models.BetPending, "cancelled"} {
		err := w.SettleBet(bet.ID, season.ID, status, season.StartDate, decimal.Zero, "tom")
		if !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("SettleBet(%q) error = %v, want ErrInvalidStatus", status, err)
		}
	}

	var unchanged models.Bet
	if err := db.First(&unchanged, bet.ID).Error; err != nil {
		t.Fatalf("reload bet: %v", err)
	}
	if unchanged.Status != models.BetPending {
		t.Errorf("status = %s, want pending", unchanged.Status)
	}
	// only the bet_placed entry exists
	if n := countEntries(t, db); n != 1 {
		t.Errorf("entries = %d, want 1", n)
	}
}

func TestEntryKindCheckConstraint(t *testing.T) {
	db := newTestDB(t)
	season, players := seedSeason(t, db, "Tom")

	entry := models.Entry{
		EntryDate: season.StartDate,
		Kind:      "deposit",
		PlayerID:  players[0].ID,
		SeasonID:  season.ID,
		Amount:    decimal.RequireFromString("5.00"),
	}
	if err := db.Create(&entry).Error; err == nil {
		t.Fatal("creating an entry with an unknown kind should violate the check constraint")
	}
}

func TestBetStatusCheckConstraint(t *testing.T) {
	db := newTestDB(t)
	season, players := seedSeason(t, db, "Tom")

	bet := models.Bet{
		PlacedByPlayerID: players[0].ID,
		Stake:            decimal.RequireFromString("10.00"),
		Description:      "Acca",
		BetDate:          season.StartDate,
		Status:           "cancelled",
	}
	if err := db.Create(&bet).Error; err == nil {
		t.Fatal("creating a bet with an unknown status should violate the check constraint")
	}
}
