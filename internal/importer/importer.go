// Package importer loads a historical transaction feed into the ledger.
//
// The feed is a CSV with header Date,Player,Amount,Transaction where the
// transaction label is one of "paid in", "placed", "won" or "paid out" and
// dates are DD/MM/YYYY. The whole batch runs inside one database
// transaction: a single bad row (unknown player, unparseable amount or
// date, unrecognised label) rolls everything back, so a corrected file can
// be re-imported without leaving duplicates behind.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spacedlevo/betting-syndicate/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "02/01/2006" // DD/MM/YYYY

// RowError reports the feed row that sank the batch.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("import row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Result summarises a completed import.
type Result struct {
	SeasonID      uint `json:"season_id"`
	Players       int  `json:"players"`
	Contributions int  `json:"contributions"`
	BetsPlaced    int  `json:"bets_placed"`
	Winnings      int  `json:"winnings"`
	Payouts       int  `json:"payouts"`
}

type row struct {
	line        int
	date        time.Time
	player      string
	amount      decimal.Decimal
	transaction string
}

// Run imports the whole feed. It bootstraps the season (created active if
// it does not exist yet), the players named in the feed and their season
// memberships, then writes one ledger entry per row, all in a single
// transaction.
func Run(db *gorm.DB, r io.Reader, seasonName string, seasonStart time.Time) (*Result, error) {
	rows, err := parse(r)
	if err != nil {
		return nil, err
	}

	// process chronologically
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	res := &Result{}
	err = db.Transaction(func(tx *gorm.DB) error {
		season, err := ensureSeason(tx, seasonName, seasonStart)
		if err != nil {
			return err
		}
		res.SeasonID = season.ID

		players, err := ensurePlayers(tx, season, seasonStart, rows)
		if err != nil {
			return err
		}
		res.Players = len(players)

		for _, rw := range rows {
			player := players[rw.player]
			if err := applyRow(tx, season, player, rw, res); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// parse reads and validates every row up front so that obvious file
// problems surface before any database work starts.
func parse(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "player", "amount", "transaction"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("csv missing %q column", required)
		}
	}

	var rows []row
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}

		get := func(name string) string {
			i := col[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		// skip blank rows, matching the feed's trailing padding
		if get("date") == "" || get("player") == "" {
			continue
		}

		date, err := time.Parse(dateLayout, get("date"))
		if err != nil {
			return nil, &RowError{Line: line, Err: fmt.Errorf("bad date %q", get("date"))}
		}
		amount, err := decimal.NewFromString(get("amount"))
		if err != nil {
			return nil, &RowError{Line: line, Err: fmt.Errorf("bad amount %q", get("amount"))}
		}

		rows = append(rows, row{
			line:        line,
			date:        date,
			player:      get("player"),
			amount:      amount.Abs(), // feed signs vary; the ledger applies its own
			transaction: strings.ToLower(get("transaction")),
		})
	}
	return rows, nil
}

func ensureSeason(tx *gorm.DB, name string, start time.Time) (*models.Season, error) {
	var season models.Season
	err := tx.Where("name = ?", name).First(&season).Error
	if err == nil {
		return &season, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	season = models.Season{Name: name, StartDate: start, IsActive: true}
	if err := tx.Create(&season).Error; err != nil {
		return nil, err
	}
	return &season, nil
}

func ensurePlayers(tx *gorm.DB, season *models.Season, joined time.Time, rows []row) (map[string]*models.Player, error) {
	names := map[string]bool{}
	for _, rw := range rows {
		names[rw.player] = true
	}

	players := make(map[string]*models.Player, len(names))
	for name := range names {
		var p models.Player
		err := tx.Where("name = ?", name).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p = models.Player{Name: name, IsActive: true}
			err = tx.Create(&p).Error
		}
		if err != nil {
			return nil, err
		}
		players[name] = &p

		var ps models.PlayerSeason
		err = tx.Where("player_id = ? AND season_id = ?", p.ID, season.ID).First(&ps).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ps = models.PlayerSeason{
				PlayerID:   p.ID,
				SeasonID:   season.ID,
				JoinedDate: joined,
				IsActive:   true,
			}
			err = tx.Create(&ps).Error
		}
		if err != nil {
			return nil, err
		}
	}
	return players, nil
}

// applyRow maps one feed row onto exactly one writer event.
func applyRow(tx *gorm.DB, season *models.Season, player *models.Player, rw row, res *Result) error {
	if !rw.amount.IsPositive() {
		return &RowError{Line: rw.line, Err: fmt.Errorf("non-positive amount %s", rw.amount)}
	}

	switch rw.transaction {
	case "paid in":
		res.Contributions++
		return tx.Create(&models.Entry{
			EntryDate:   rw.date,
			Kind:        models.KindContribution,
			PlayerID:    player.ID,
			SeasonID:    season.ID,
			Amount:      rw.amount,
			Description: "Contribution",
			CreatedBy:   "import",
		}).Error

	case "placed":
		bet := models.Bet{
			PlacedByPlayerID: player.ID,
			Stake:            rw.amount,
			Description:      fmt.Sprintf("Bet placed on %s", rw.date.Format("2006-01-02")),
			BetDate:          rw.date,
			Status:           models.BetPending,
			Notes:            "Imported from CSV",
		}
		if err := tx.Create(&bet).Error; err != nil {
			return err
		}
		res.BetsPlaced++
		return tx.Create(&models.Entry{
			EntryDate:   rw.date,
			Kind:        models.KindBetPlaced,
			PlayerID:    player.ID,
			SeasonID:    season.ID,
			Amount:      rw.amount.Neg(),
			Description: "Bet placed",
			BetID:       &bet.ID,
			CreatedBy:   "import",
		}).Error

	case "won":
		res.Winnings++
		return tx.Create(&models.Entry{
			EntryDate:   rw.date,
			Kind:        models.KindWinnings,
			PlayerID:    player.ID,
			SeasonID:    season.ID,
			Amount:      rw.amount,
			Description: "Bet won",
			CreatedBy:   "import",
		}).Error

	case "paid out":
		res.Payouts++
		return tx.Create(&models.Entry{
			EntryDate:   rw.date,
			Kind:        models.KindPayout,
			PlayerID:    player.ID,
			SeasonID:    season.ID,
			Amount:      rw.amount.Neg(),
			Description: "Payout to player",
			CreatedBy:   "import",
		}).Error

	default:
		return &RowError{Line: rw.line, Err: fmt.Errorf("unknown transaction type %q", rw.transaction)}
	}
}
