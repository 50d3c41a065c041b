package calc

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCountMondays(t *testing.T) {
	monday := date(2025, time.August, 11)
	wednesday := date(2025, time.August, 13)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"start day is a counted Monday", monday, monday, 1},
		{"rest of the first week adds nothing", monday, date(2025, time.August, 17), 1},
		{"next Monday counts", monday, date(2025, time.August, 18), 2},
		{"end before start", monday, date(2025, time.August, 10), 0},
		{"mid-week start before its first Monday", wednesday, date(2025, time.August, 17), 0},
		{"mid-week start reaching its first Monday", wednesday, date(2025, time.August, 18), 1},
		{"ten weeks in", monday, date(2025, time.October, 19), 10},
	}
	for _, tt := range tests {
		if got := CountMondays(tt.start, tt.end); got != tt.want {
			t.Errorf("%s: CountMondays() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestBettingBudget(t *testing.T) {
	start := date(2025, time.August, 11)
	rules := DefaultRules()

	tests := []struct {
		name  string
		today time.Time
		want  string
	}{
		{"before the season", date(2025, time.August, 10), "0.00"},
		{"day one, no whole week yet", start, "0.00"},
		{"first whole week opens the first cycle", start.AddDate(0, 0, 7), "30.00"},
		{"week six is still cycle one", start.AddDate(0, 0, 42), "30.00"},
		{"week seven opens cycle two", start.AddDate(0, 0, 49), "60.00"},
	}
	for _, tt := range tests {
		got := BettingBudget(start, tt.today, rules)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("%s: BettingBudget() = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestExpectedContributions(t *testing.T) {
	db := newTestDB(t)
	season, _ := seedSeason(t, db, "Tom", "Dan", "Kev")
	rules := DefaultRules()

	// three Mondays elapsed: 11th, 18th, 25th
	today := date(2025, time.August, 26)

	perPlayer, err := ExpectedContributionPerPlayer(db, season.ID, rules, today)
	if err != nil {
		t.Fatalf("ExpectedContributionPerPlayer() error = %v", err)
	}
	wantEqual(t, "expected per player", perPlayer, "15.00")

	total, err := ExpectedContributions(db, season.ID, rules, today)
	if err != nil {
		t.Fatalf("ExpectedContributions() error = %v", err)
	}
	wantEqual(t, "expected total", total, "45.00")
}
