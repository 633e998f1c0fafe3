package anki

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/conorfennell/ankiview/internal/domain"
)

var testNow = time.Date(2026, 3, 18, 12, 0, 0, 0, time.Local)

// reviewAt returns a revlog id (millisecond timestamp) n days before
// testNow, at noon to stay clear of day boundaries.
func reviewAt(daysAgo int, offset int) int64 {
	return testNow.AddDate(0, 0, -daysAgo).UnixMilli() + int64(offset)
}

const modernSchema = `
CREATE TABLE cards (id INTEGER PRIMARY KEY, did INTEGER, type INTEGER, queue INTEGER);
CREATE TABLE decks (id INTEGER PRIMARY KEY, name TEXT);
CREATE TABLE revlog (id INTEGER PRIMARY KEY, cid INTEGER, ease INTEGER, ivl INTEGER, time INTEGER, type INTEGER);
`

const legacySchema = `
CREATE TABLE cards (id INTEGER PRIMARY KEY, did INTEGER, type INTEGER, queue INTEGER);
CREATE TABLE col (id INTEGER PRIMARY KEY, decks TEXT);
CREATE TABLE revlog (id INTEGER PRIMARY KEY, cid INTEGER, ease INTEGER, ivl INTEGER, time INTEGER, type INTEGER);
`

// newTestDB writes a collection file and returns a Reader pinned to testNow.
func newTestDB(t *testing.T, schema string, inserts []string) *Reader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collection.anki2")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}
	for _, stmt := range inserts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to insert test row: %v", err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Failed to close test database: %v", err)
	}

	reader, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { reader.Close() })
	reader.now = func() time.Time { return testNow }
	return reader
}

func modernTestDB(t *testing.T) *Reader {
	t.Helper()
	return newTestDB(t, modernSchema, []string{
		`INSERT INTO decks VALUES (1, 'Japanese'), (2, 'Japanese` + "\x1f" + `Vocabulary')`,
		// Deck 1: one new, one mature. Deck 2: one learning (suspended), one mature.
		`INSERT INTO cards VALUES (10, 1, 0, 0), (11, 1, 2, 2), (20, 2, 1, -1), (21, 2, 2, 2)`,
		fmt.Sprintf(`INSERT INTO revlog VALUES
			(%d, 11, 3, 10, 60000, 1),
			(%d, 11, 3, 12, 120000, 1),
			(%d, 21, 2, 5, 180000, 1),
			(%d, 10, 1, 0, 30000, 0)`,
			reviewAt(0, 0), reviewAt(0, 1), reviewAt(1, 0), reviewAt(10, 0)),
	})
}

func TestOpenMissingDatabase(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "collection.anki2"))
	if !errors.Is(err, ErrDatabaseMissing) {
		t.Errorf("Expected ErrDatabaseMissing, got %v", err)
	}
}

func TestCardCounts(t *testing.T) {
	reader := modernTestDB(t)

	counts, err := reader.CardCounts()
	if err != nil {
		t.Fatalf("CardCounts returned error: %v", err)
	}

	want := domain.CardCounts{Total: 4, New: 1, Learning: 1, Mature: 2, Suspended: 1}
	if counts != want {
		t.Errorf("Expected %+v, got %+v", want, counts)
	}
}

func TestDailyReviewCounts(t *testing.T) {
	reader := modernTestDB(t)

	daily, err := reader.DailyReviewCounts(365)
	if err != nil {
		t.Fatalf("DailyReviewCounts returned error: %v", err)
	}

	today := testNow.Format(domain.DateFormat)
	yesterday := testNow.AddDate(0, 0, -1).Format(domain.DateFormat)
	if daily[today] != 2 {
		t.Errorf("Expected 2 reviews today, got %d", daily[today])
	}
	if daily[yesterday] != 1 {
		t.Errorf("Expected 1 review yesterday, got %d", daily[yesterday])
	}
	if len(daily) != 3 {
		t.Errorf("Expected 3 distinct review days, got %d", len(daily))
	}

	t.Run("window excludes old events", func(t *testing.T) {
		daily, err := reader.DailyReviewCounts(7)
		if err != nil {
			t.Fatalf("DailyReviewCounts returned error: %v", err)
		}
		if len(daily) != 2 {
			t.Errorf("Expected the 10-day-old review outside a 7-day window, got %d days", len(daily))
		}
	})
}

func TestDailyReviewMinutes(t *testing.T) {
	reader := modernTestDB(t)

	minutes, err := reader.DailyReviewMinutes(365)
	if err != nil {
		t.Fatalf("DailyReviewMinutes returned error: %v", err)
	}

	today := testNow.Format(domain.DateFormat)
	// 60000ms + 120000ms = 3 minutes.
	if minutes[today] != 3 {
		t.Errorf("Expected 3 minutes today, got %d", minutes[today])
	}
}

func TestTotalReviewTimeMS(t *testing.T) {
	reader := modernTestDB(t)

	total, err := reader.TotalReviewTimeMS(7)
	if err != nil {
		t.Fatalf("TotalReviewTimeMS returned error: %v", err)
	}
	if total != 360000 {
		t.Errorf("Expected 360000ms within 7 days, got %d", total)
	}

	t.Run("empty revlog sums to zero", func(t *testing.T) {
		reader := newTestDB(t, modernSchema, nil)
		total, err := reader.TotalReviewTimeMS(7)
		if err != nil {
			t.Fatalf("TotalReviewTimeMS returned error: %v", err)
		}
		if total != 0 {
			t.Errorf("Expected 0 for an empty revlog, got %d", total)
		}
	})
}

func TestDecks(t *testing.T) {
	reader := modernTestDB(t)

	decks, err := reader.Decks()
	if err != nil {
		t.Fatalf("Decks returned error: %v", err)
	}
	if len(decks) != 2 {
		t.Fatalf("Expected 2 decks, got %d", len(decks))
	}

	if decks["2"].Name != "Japanese::Vocabulary" {
		t.Errorf("Expected unit-separator name normalized to ::, got %q", decks["2"].Name)
	}
	if d := decks["1"]; d.Total != 2 || d.New != 1 || d.Mature != 1 {
		t.Errorf("Expected deck 1 counts total=2 new=1 mature=1, got %+v", d)
	}
}

func TestDecksLegacySchema(t *testing.T) {
	reader := newTestDB(t, legacySchema, []string{
		`INSERT INTO col VALUES (1, '{"1": {"name": "Default"}, "7": {"name": "History::Modern"}}')`,
		`INSERT INTO cards VALUES (10, 7, 2, 2), (11, 7, 0, 0)`,
	})

	decks, err := reader.Decks()
	if err != nil {
		t.Fatalf("Decks returned error: %v", err)
	}
	if len(decks) != 2 {
		t.Fatalf("Expected 2 decks from the JSON blob, got %d", len(decks))
	}
	if d := decks["7"]; d.Name != "History::Modern" || d.Total != 2 || d.Mature != 1 {
		t.Errorf("Expected History::Modern with total=2 mature=1, got %+v", d)
	}
}

func TestDeckReviewCounts(t *testing.T) {
	reader := modernTestDB(t)

	counts, err := reader.DeckReviewCounts(7)
	if err != nil {
		t.Fatalf("DeckReviewCounts returned error: %v", err)
	}
	if counts["1"] != 2 || counts["2"] != 1 {
		t.Errorf("Expected deck1=2 deck2=1 within 7 days, got %+v", counts)
	}
}

func TestDailyDeckCounts(t *testing.T) {
	reader := modernTestDB(t)

	counts, err := reader.DailyDeckCounts(365)
	if err != nil {
		t.Fatalf("DailyDeckCounts returned error: %v", err)
	}
	today := testNow.Format(domain.DateFormat)
	if counts[today] != 1 {
		t.Errorf("Expected 1 distinct deck today, got %d", counts[today])
	}
}

func TestReviewHistory(t *testing.T) {
	reader := modernTestDB(t)

	events, err := reader.ReviewHistory(365)
	if err != nil {
		t.Fatalf("ReviewHistory returned error: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("Expected 4 events, got %d", len(events))
	}
	if events[0].ID > events[1].ID {
		t.Error("Expected events ordered oldest first")
	}
	if events[len(events)-1].CardID != 11 {
		t.Errorf("Expected the newest event on card 11, got %d", events[len(events)-1].CardID)
	}
	if got := events[len(events)-1].Time(); got.Day() != testNow.Day() {
		t.Errorf("Expected event time on day %d, got %v", testNow.Day(), got)
	}
}
