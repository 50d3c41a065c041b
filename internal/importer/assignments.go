package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spacedlevo/betting-syndicate/internal/models"

	"gorm.io/gorm"
)

// ImportAssignments loads the season calendar: one row per week,
// start_date,player1,player2 with DD/MM/YYYY dates. Week numbers follow
// row order, each week spans 7 days, and the two named players get
// assignment orders 1 and 2. Runs in one transaction like the ledger feed.
func ImportAssignments(db *gorm.DB, r io.Reader, seasonID uint) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	weeks := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		var season models.Season
		if err := tx.First(&season, seasonID).Error; err != nil {
			return fmt.Errorf("season %d: %w", seasonID, err)
		}

		line := 0
		for {
			record, err := cr.Read()
			if err == io.EOF {
				break
			}
			line++
			if err != nil {
				return &RowError{Line: line, Err: err}
			}
			if len(record) < 3 {
				continue
			}

			start, err := time.Parse(dateLayout, strings.TrimSpace(record[0]))
			if err != nil {
				return &RowError{Line: line, Err: fmt.Errorf("bad date %q", record[0])}
			}

			week, err := ensureWeek(tx, seasonID, line, start)
			if err != nil {
				return err
			}

			for order, name := range []string{strings.TrimSpace(record[1]), strings.TrimSpace(record[2])} {
				var player models.Player
				if err := tx.Where("name = ?", name).First(&player).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return &RowError{Line: line, Err: fmt.Errorf("unknown player %q", name)}
					}
					return err
				}
				if err := ensureAssignment(tx, week.ID, player.ID, order+1); err != nil {
					return err
				}
			}
			weeks++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return weeks, nil
}

func ensureWeek(tx *gorm.DB, seasonID uint, number int, start time.Time) (*models.Week, error) {
	var week models.Week
	err := tx.Where("season_id = ? AND week_number = ?", seasonID, number).First(&week).Error
	if err == nil {
		return &week, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	week = models.Week{
		SeasonID:   seasonID,
		WeekNumber: number,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 6),
	}
	if err := tx.Create(&week).Error; err != nil {
		return nil, err
	}
	return &week, nil
}

func ensureAssignment(tx *gorm.DB, weekID, playerID uint, order int) error {
	var existing models.WeekAssignment
	err := tx.Where("week_id = ? AND assignment_order = ?", weekID, order).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(&models.WeekAssignment{
		WeekID:          weekID,
		PlayerID:        playerID,
		AssignmentOrder: order,
	}).Error
}
