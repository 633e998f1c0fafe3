// Package anki provides read-only access to an Anki collection database.
package anki

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/conorfennell/ankiview/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// ErrDatabaseLocked indicates the collection is open in Anki itself.
var ErrDatabaseLocked = errors.New("database is locked (close Anki and retry)")

// ErrDatabaseMissing indicates the collection file does not exist.
var ErrDatabaseMissing = errors.New("collection database not found")

// Reader is a read-only handle on a collection database.
type Reader struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens the collection read-only. The immutable URI parameter keeps
// sqlite from touching WAL or journal files, so a collection left behind by
// a running Anki can still be read.
func Open(dbPath string) (*Reader, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("%s: %w", dbPath, ErrDatabaseMissing)
	}

	dsn := "file:" + (&url.URL{Path: dbPath}).EscapedPath() + "?immutable=1&mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, wrapDBError("failed to connect to database", err)
	}

	return &Reader{conn: db, now: time.Now}, nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	return r.conn.Close()
}

// wrapDBError maps sqlite busy/locked failures onto ErrDatabaseLocked so
// callers can print a remediation hint.
func wrapDBError(msg string, err error) error {
	if strings.Contains(err.Error(), "locked") || strings.Contains(err.Error(), "SQLITE_BUSY") {
		return fmt.Errorf("%s: %w", msg, ErrDatabaseLocked)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// cutoffMillis returns the revlog id lower bound for a trailing window of
// days. Revlog ids are millisecond timestamps.
func (r *Reader) cutoffMillis(days int) int64 {
	return r.now().AddDate(0, 0, -days).UnixMilli()
}

// ReviewHistory returns the raw review events of the past days, oldest first.
func (r *Reader) ReviewHistory(days int) ([]domain.ReviewEvent, error) {
	rows, err := r.conn.Query(`
		SELECT id, cid, ease, ivl, time, type
		FROM revlog
		WHERE id > ?
		ORDER BY id
	`, r.cutoffMillis(days))
	if err != nil {
		return nil, wrapDBError("failed to query review history", err)
	}
	defer rows.Close()

	var events []domain.ReviewEvent
	for rows.Next() {
		var e domain.ReviewEvent
		if err := rows.Scan(&e.ID, &e.CardID, &e.Ease, &e.Interval, &e.TimeMS, &e.Type); err != nil {
			return nil, fmt.Errorf("failed to scan review event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DailyReviewCounts returns review counts keyed by local calendar day for
// the past days.
func (r *Reader) DailyReviewCounts(days int) (map[string]int, error) {
	rows, err := r.conn.Query(`
		SELECT date(id/1000, 'unixepoch', 'localtime') AS review_date, COUNT(*) AS count
		FROM revlog
		WHERE id > ?
		GROUP BY review_date
		ORDER BY review_date
	`, r.cutoffMillis(days))
	if err != nil {
		return nil, wrapDBError("failed to query daily review counts", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var date string
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("failed to scan daily count row: %w", err)
		}
		counts[date] = count
	}
	return counts, rows.Err()
}

// DailyReviewMinutes returns study time in whole minutes keyed by local
// calendar day for the past days.
func (r *Reader) DailyReviewMinutes(days int) (map[string]int, error) {
	rows, err := r.conn.Query(`
		SELECT date(id/1000, 'unixepoch', 'localtime') AS review_date, SUM(time) AS total_time
		FROM revlog
		WHERE id > ?
		GROUP BY review_date
		ORDER BY review_date
	`, r.cutoffMillis(days))
	if err != nil {
		return nil, wrapDBError("failed to query daily review time", err)
	}
	defer rows.Close()

	minutes := make(map[string]int)
	for rows.Next() {
		var date string
		var totalMS sql.NullInt64
		if err := rows.Scan(&date, &totalMS); err != nil {
			return nil, fmt.Errorf("failed to scan daily time row: %w", err)
		}
		minutes[date] = int(totalMS.Int64 / 60000)
	}
	return minutes, rows.Err()
}

// TotalReviewTimeMS returns the summed review time in milliseconds for the
// past days.
func (r *Reader) TotalReviewTimeMS(days int) (int64, error) {
	var total sql.NullInt64
	err := r.conn.QueryRow(`
		SELECT SUM(time) FROM revlog WHERE id > ?
	`, r.cutoffMillis(days)).Scan(&total)
	if err != nil {
		return 0, wrapDBError("failed to query total review time", err)
	}
	return total.Int64, nil
}

// CardCounts returns collection-wide card counts by state.
func (r *Reader) CardCounts() (domain.CardCounts, error) {
	var c domain.CardCounts
	var total, newCards, learning, mature, suspended sql.NullInt64
	err := r.conn.QueryRow(`
		SELECT
			COUNT(*),
			SUM(CASE WHEN type = 0 THEN 1 ELSE 0 END),
			SUM(CASE WHEN type = 1 OR type = 3 THEN 1 ELSE 0 END),
			SUM(CASE WHEN type = 2 THEN 1 ELSE 0 END),
			SUM(CASE WHEN queue < 0 THEN 1 ELSE 0 END)
		FROM cards
	`).Scan(&total, &newCards, &learning, &mature, &suspended)
	if err != nil {
		return c, wrapDBError("failed to query card counts", err)
	}

	c.Total = int(total.Int64)
	c.New = int(newCards.Int64)
	c.Learning = int(learning.Int64)
	c.Mature = int(mature.Int64)
	c.Suspended = int(suspended.Int64)
	return c, nil
}

// Decks returns every deck with per-deck card counts. Both schema shapes
// are supported: the modern decks table and the legacy JSON blob embedded
// in the col table.
func (r *Reader) Decks() (map[string]domain.Deck, error) {
	decks, err := r.deckNames()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.Query(`
		SELECT
			did,
			COUNT(*),
			SUM(CASE WHEN type = 0 THEN 1 ELSE 0 END),
			SUM(CASE WHEN type = 2 THEN 1 ELSE 0 END)
		FROM cards
		GROUP BY did
	`)
	if err != nil {
		return nil, wrapDBError("failed to query per-deck card counts", err)
	}
	defer rows.Close()

	for rows.Next() {
		var did int64
		var total, newCards, mature sql.NullInt64
		if err := rows.Scan(&did, &total, &newCards, &mature); err != nil {
			return nil, fmt.Errorf("failed to scan deck count row: %w", err)
		}
		id := fmt.Sprintf("%d", did)
		deck, ok := decks[id]
		if !ok {
			// Cards can reference a deck that was since deleted.
			continue
		}
		deck.Total = int(total.Int64)
		deck.New = int(newCards.Int64)
		deck.Mature = int(mature.Int64)
		decks[id] = deck
	}
	return decks, rows.Err()
}

// deckNames reads the deck id/name listing, trying the modern schema first.
func (r *Reader) deckNames() (map[string]domain.Deck, error) {
	decks := make(map[string]domain.Deck)

	rows, err := r.conn.Query(`SELECT id, name FROM decks`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var id int64
			var name string
			if err := rows.Scan(&id, &name); err != nil {
				return nil, fmt.Errorf("failed to scan deck row: %w", err)
			}
			// Modern schema joins name segments with 0x1f.
			name = strings.ReplaceAll(name, "\x1f", "::")
			idStr := fmt.Sprintf("%d", id)
			decks[idStr] = domain.Deck{ID: idStr, Name: name}
		}
		return decks, rows.Err()
	}

	// Legacy schema: decks live as a JSON object in the col table.
	var decksJSON string
	if err := r.conn.QueryRow(`SELECT decks FROM col`).Scan(&decksJSON); err != nil {
		return nil, wrapDBError("failed to read decks from col table", err)
	}

	var raw map[string]struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(decksJSON), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse legacy deck blob: %w", err)
	}
	for id, info := range raw {
		decks[id] = domain.Deck{ID: id, Name: info.Name}
	}
	return decks, nil
}

// DeckReviewCounts returns per-deck review counts for the past days,
// most-reviewed first.
func (r *Reader) DeckReviewCounts(days int) (map[string]int, error) {
	rows, err := r.conn.Query(`
		SELECT c.did, COUNT(*) AS review_count
		FROM revlog r
		JOIN cards c ON r.cid = c.id
		WHERE r.id > ?
		GROUP BY c.did
		ORDER BY review_count DESC
	`, r.cutoffMillis(days))
	if err != nil {
		return nil, wrapDBError("failed to query deck review counts", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var did int64
		var count int
		if err := rows.Scan(&did, &count); err != nil {
			return nil, fmt.Errorf("failed to scan deck review row: %w", err)
		}
		counts[fmt.Sprintf("%d", did)] = count
	}
	return counts, rows.Err()
}

// DailyDeckCounts returns the number of distinct decks studied per day.
func (r *Reader) DailyDeckCounts(days int) (map[string]int, error) {
	rows, err := r.conn.Query(`
		SELECT date(r.id/1000, 'unixepoch', 'localtime') AS review_date,
			COUNT(DISTINCT c.did) AS deck_count
		FROM revlog r
		JOIN cards c ON r.cid = c.id
		WHERE r.id > ?
		GROUP BY review_date
		ORDER BY review_date
	`, r.cutoffMillis(days))
	if err != nil {
		return nil, wrapDBError("failed to query daily deck counts", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var date string
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("failed to scan daily deck row: %w", err)
		}
		counts[date] = count
	}
	return counts, rows.Err()
}
