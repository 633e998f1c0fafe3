package domain

import "time"

// DateFormat is the calendar-day key used throughout the snapshot maps.
const DateFormat = "2006-01-02"

// Card type codes as stored in the Anki cards table.
// 0: New, 1: Learning, 2: Review (mature), 3: Relearning
const (
	CardTypeNew        = 0
	CardTypeLearning   = 1
	CardTypeReview     = 2
	CardTypeRelearning = 3
)

// ReviewEvent is one row of the review log. The ID doubles as the event's
// timestamp in milliseconds since the epoch.
type ReviewEvent struct {
	ID       int64
	CardID   int64
	Ease     int
	Interval int
	TimeMS   int64
	Type     int
}

// Time returns the event timestamp in local time.
func (e ReviewEvent) Time() time.Time {
	return time.UnixMilli(e.ID)
}

// CardCounts holds the collection-wide card totals by state.
type CardCounts struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Learning  int `json:"learning"`
	Mature    int `json:"mature"`
	Suspended int `json:"suspended"`
}

// Active is the number of cards that are not suspended or buried.
func (c CardCounts) Active() int {
	return c.Total - c.Suspended
}

// Deck is one deck with its derived card counts. Name segments are joined
// with "::".
type Deck struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Total  int    `json:"total"`
	New    int    `json:"new"`
	Mature int    `json:"mature"`
}

// LeafName returns the last segment of a hierarchical deck name.
func (d Deck) LeafName() string {
	name := d.Name
	for i := len(name) - 2; i >= 0; i-- {
		if name[i] == ':' && name[i+1] == ':' {
			return name[i+2:]
		}
	}
	return name
}

// DeckActivity is a deck's review count over some window, used for
// ranking charts.
type DeckActivity struct {
	Name    string `json:"name"`
	Reviews int    `json:"reviews"`
}

// HeatmapBucket is one calendar-day cell of the activity heatmap.
type HeatmapBucket struct {
	Date    string `json:"date"`
	Count   int    `json:"count"`
	Weekday int    `json:"weekday"`
	Week    int    `json:"week"`
}

// Snapshot is the full set of statistics computed on one run.
type Snapshot struct {
	GeneratedAt        time.Time       `json:"generated_at"`
	Cards              CardCounts      `json:"cards"`
	Decks              map[string]Deck `json:"decks"`
	DailyReviews       map[string]int  `json:"daily_reviews"`
	DailyMinutes       map[string]int  `json:"daily_minutes"`
	Streak             int             `json:"streak"`
	WeeklyReviews      int             `json:"weekly_reviews"`
	WeeklyTimeMinutes  int             `json:"weekly_time_minutes"`
	WeeklyDeckReviews  []DeckActivity  `json:"weekly_deck_reviews"`
	MonthlyDeckReviews []DeckActivity  `json:"monthly_deck_reviews"`
	Heatmap            []HeatmapBucket `json:"heatmap_data"`
}

// HistoryEntry is the per-day summary kept in the rolling history file.
type HistoryEntry struct {
	Date              string `json:"date"`
	TotalCards        int    `json:"total_cards"`
	MatureCards       int    `json:"mature_cards"`
	NewCards          int    `json:"new_cards"`
	Streak            int    `json:"streak"`
	WeeklyReviews     int    `json:"weekly_reviews"`
	WeeklyTimeMinutes int    `json:"weekly_time_minutes"`
}
