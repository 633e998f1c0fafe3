// Package stats derives display statistics from raw collection aggregates.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/conorfennell/ankiview/internal/domain"
)

// Source is the slice of the collection reader the calculator consumes.
type Source interface {
	CardCounts() (domain.CardCounts, error)
	Decks() (map[string]domain.Deck, error)
	DailyReviewCounts(days int) (map[string]int, error)
	DailyReviewMinutes(days int) (map[string]int, error)
	TotalReviewTimeMS(days int) (int64, error)
	DeckReviewCounts(days int) (map[string]int, error)
}

// Calculator assembles a Snapshot from a Source.
type Calculator struct {
	source Source
	now    func() time.Time
}

// NewCalculator returns a Calculator reading from source.
func NewCalculator(source Source) *Calculator {
	return &Calculator{source: source, now: time.Now}
}

// Compute reads every aggregate and derives the snapshot metrics. The days
// window bounds the daily maps; weekly metrics always cover the trailing 7
// days and the monthly deck ranking the trailing 30.
func (c *Calculator) Compute(days int) (domain.Snapshot, error) {
	var snap domain.Snapshot

	cards, err := c.source.CardCounts()
	if err != nil {
		return snap, fmt.Errorf("card counts: %w", err)
	}
	decks, err := c.source.Decks()
	if err != nil {
		return snap, fmt.Errorf("decks: %w", err)
	}
	daily, err := c.source.DailyReviewCounts(days)
	if err != nil {
		return snap, fmt.Errorf("daily review counts: %w", err)
	}
	dailyMinutes, err := c.source.DailyReviewMinutes(days)
	if err != nil {
		return snap, fmt.Errorf("daily review time: %w", err)
	}
	weekTimeMS, err := c.source.TotalReviewTimeMS(7)
	if err != nil {
		return snap, fmt.Errorf("weekly review time: %w", err)
	}
	weekDeckCounts, err := c.source.DeckReviewCounts(7)
	if err != nil {
		return snap, fmt.Errorf("weekly deck reviews: %w", err)
	}
	monthDeckCounts, err := c.source.DeckReviewCounts(30)
	if err != nil {
		return snap, fmt.Errorf("monthly deck reviews: %w", err)
	}

	now := c.now()
	snap = domain.Snapshot{
		GeneratedAt:        now,
		Cards:              cards,
		Decks:              decks,
		DailyReviews:       daily,
		DailyMinutes:       dailyMinutes,
		Streak:             Streak(daily, now),
		WeeklyReviews:      WeeklyReviews(daily, now),
		WeeklyTimeMinutes:  int(weekTimeMS / 60000),
		WeeklyDeckReviews:  RankDecks(decks, weekDeckCounts),
		MonthlyDeckReviews: RankDecks(decks, monthDeckCounts),
		Heatmap:            HeatmapBuckets(daily, now),
	}
	return snap, nil
}

// Streak counts consecutive calendar days with at least one review, walking
// backward from the anchor day. The anchor is today when today has reviews;
// otherwise yesterday, so that a streak is not broken before the first
// review of the current day. With neither present the streak is zero.
func Streak(daily map[string]int, today time.Time) int {
	current := today
	if _, ok := daily[dateKey(current)]; !ok {
		current = current.AddDate(0, 0, -1)
		if _, ok := daily[dateKey(current)]; !ok {
			return 0
		}
	}

	streak := 0
	for {
		if _, ok := daily[dateKey(current)]; !ok {
			return streak
		}
		streak++
		current = current.AddDate(0, 0, -1)
	}
}

// WeeklyReviews sums the 7 most recent daily buckets, today inclusive.
// Absent days count as zero.
func WeeklyReviews(daily map[string]int, today time.Time) int {
	total := 0
	for i := 0; i < 7; i++ {
		total += daily[dateKey(today.AddDate(0, 0, -i))]
	}
	return total
}

// HeatmapBuckets maps the daily counts onto a 52-week calendar grid. The
// range starts at the Monday 52 weeks before the current week and runs
// through today, one bucket per day. Weekday is Monday-based.
func HeatmapBuckets(daily map[string]int, today time.Time) []domain.HeatmapBucket {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	start := day.AddDate(0, 0, -(mondayWeekday(day) + 52*7))

	var buckets []domain.HeatmapBucket
	for i, current := 0, start; !current.After(day); i, current = i+1, current.AddDate(0, 0, 1) {
		buckets = append(buckets, domain.HeatmapBucket{
			Date:    dateKey(current),
			Count:   daily[dateKey(current)],
			Weekday: mondayWeekday(current),
			Week:    i / 7,
		})
	}
	return buckets
}

// RankDecks resolves per-deck review counts to named activity entries,
// most-reviewed first. Decks without cards are omitted; decks with cards
// but no reviews stay at the tail so ranking charts can show them as empty.
func RankDecks(decks map[string]domain.Deck, reviewCounts map[string]int) []domain.DeckActivity {
	var ranking []domain.DeckActivity
	for id, deck := range decks {
		if deck.Total == 0 {
			continue
		}
		ranking = append(ranking, domain.DeckActivity{
			Name:    deck.Name,
			Reviews: reviewCounts[id],
		})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Reviews != ranking[j].Reviews {
			return ranking[i].Reviews > ranking[j].Reviews
		}
		return ranking[i].Name < ranking[j].Name
	})
	return ranking
}

// mondayWeekday converts time.Weekday (Sunday=0) to Monday=0.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func dateKey(t time.Time) string {
	return t.Format(domain.DateFormat)
}
