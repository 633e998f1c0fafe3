package svg

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/conorfennell/ankiview/internal/domain"
)

var testToday = time.Date(2026, 3, 18, 12, 0, 0, 0, time.Local)

func TestBarChart(t *testing.T) {
	t.Run("empty dataset renders placeholder", func(t *testing.T) {
		out := BarChart(nil, false, BarChartOptions{Width: StandardWidth})
		if !strings.Contains(out, "No data") {
			t.Errorf("Expected placeholder output, got %s", out)
		}
		if !strings.Contains(out, `width="792"`) {
			t.Errorf("Expected placeholder to keep the fixed width, got %s", out)
		}
	})

	t.Run("zero values get the floor height and empty color", func(t *testing.T) {
		bars := []Bar{
			{Label: "Mon", Value: 0},
			{Label: "Tue", Value: 100},
		}
		out := BarChart(bars, false, BarChartOptions{BarWidth: 36})
		if !strings.Contains(out, `height="3" fill="#ebedf0"`) {
			t.Errorf("Expected a 3px empty-colored bar, got %s", out)
		}
		if !strings.Contains(out, `height="80"`) {
			t.Errorf("Expected the max value to fill the full bar height, got %s", out)
		}
	})

	t.Run("heights scale proportionally to the max", func(t *testing.T) {
		bars := []Bar{
			{Label: "a", Value: 25},
			{Label: "b", Value: 100},
		}
		out := BarChart(bars, false, BarChartOptions{BarWidth: 36})
		if !strings.Contains(out, `height="20"`) {
			t.Errorf("Expected 25/100 to render at 20px, got %s", out)
		}
	})

	t.Run("value suffix", func(t *testing.T) {
		bars := []Bar{{Label: "Mon", Value: 12}}
		out := BarChart(bars, false, BarChartOptions{BarWidth: 36, ValueSuffix: "m"})
		if !strings.Contains(out, ">12m</text>") {
			t.Errorf("Expected suffixed value label, got %s", out)
		}
	})

	t.Run("adaptive bar width fills a fixed-width chart", func(t *testing.T) {
		bars := make([]Bar, 10)
		for i := range bars {
			bars[i] = Bar{Label: "deck", Value: i}
		}
		out := BarChart(bars, false, BarChartOptions{Width: StandardWidth, BarGap: 12, RotateLabels: true})
		// (792 - 40 - 10 - 9*12) / 10 = 63
		if !strings.Contains(out, `width="63"`) {
			t.Errorf("Expected adaptive 63px bars, got %s", out)
		}
	})

	t.Run("dark theme palette", func(t *testing.T) {
		bars := []Bar{{Label: "Mon", Value: 5}}
		out := BarChart(bars, true, BarChartOptions{BarWidth: 36})
		if !strings.Contains(out, `fill="#0d1117"`) {
			t.Errorf("Expected dark background, got %s", out)
		}
	})
}

func TestHeatmap(t *testing.T) {
	buckets := []domain.HeatmapBucket{
		{Date: testToday.Format(domain.DateFormat), Count: 12},
		{Date: testToday.AddDate(0, 0, -30).Format(domain.DateFormat), Count: 3},
	}

	t.Run("standard width and both palettes", func(t *testing.T) {
		light := Heatmap(buckets, testToday, false)
		dark := Heatmap(buckets, testToday, true)
		if !strings.Contains(light, `width="792"`) {
			t.Errorf("Expected 792px heatmap, got header %s", light[:120])
		}
		if !strings.Contains(light, "#216e39") || !strings.Contains(dark, "#39d353") {
			t.Error("Expected the busiest day to use the top palette level in both themes")
		}
	})

	t.Run("tooltips carry date and count", func(t *testing.T) {
		out := Heatmap(buckets, testToday, false)
		want := "12 reviews on " + testToday.Format(domain.DateFormat)
		if !strings.Contains(out, want) {
			t.Errorf("Expected tooltip %q in output", want)
		}
	})

	t.Run("no data still renders a full grid", func(t *testing.T) {
		out := Heatmap(nil, testToday, false)
		if cells := strings.Count(out, "<rect"); cells < 300 {
			t.Errorf("Expected a full grid of cells, got %d rects", cells)
		}
	})
}

func TestColorLevel(t *testing.T) {
	cases := []struct {
		count, max, want int
	}{
		{0, 100, 0},
		{1, 100, 1},
		{24, 100, 1},
		{25, 100, 2},
		{50, 100, 3},
		{75, 100, 4},
		{100, 100, 4},
		{5, 0, 1},
	}
	for _, c := range cases {
		if got := colorLevel(c.count, c.max); got != c.want {
			t.Errorf("colorLevel(%d, %d): expected %d, got %d", c.count, c.max, got, c.want)
		}
	}
}

func TestWeeklyBars(t *testing.T) {
	daily := map[string]int{
		testToday.Format(domain.DateFormat):                  5,
		testToday.AddDate(0, 0, -6).Format(domain.DateFormat): 9,
	}
	bars := WeeklyBars(daily, testToday)
	if len(bars) != 7 {
		t.Fatalf("Expected 7 bars, got %d", len(bars))
	}
	if bars[0].Value != 9 || bars[6].Value != 5 {
		t.Errorf("Expected oldest-first ordering (9 ... 5), got %d ... %d", bars[0].Value, bars[6].Value)
	}
	if bars[6].Label != testToday.Format("01/02") {
		t.Errorf("Expected MM/DD label %s, got %s", testToday.Format("01/02"), bars[6].Label)
	}
}

func TestWeeklyMinuteBars(t *testing.T) {
	// 2026-03-16 is the Monday of testToday's week.
	monday := time.Date(2026, 3, 16, 0, 0, 0, 0, time.Local)
	minutes := map[string]int{monday.Format(domain.DateFormat): 42}

	bars := WeeklyMinuteBars(minutes, testToday)
	if len(bars) != 7 {
		t.Fatalf("Expected 7 bars, got %d", len(bars))
	}
	if bars[0].Label != "Mon" || bars[0].Value != 42 {
		t.Errorf("Expected Monday bar with 42 minutes, got %s with %d", bars[0].Label, bars[0].Value)
	}
	if bars[6].Label != "Sun" {
		t.Errorf("Expected the week to end on Sun, got %s", bars[6].Label)
	}
}

func TestDeckBars(t *testing.T) {
	ranking := []domain.DeckActivity{
		{Name: "Languages::Japanese::Vocabularies", Reviews: 50},
		{Name: "Short", Reviews: 10},
		{Name: "Third", Reviews: 1},
	}
	bars := DeckBars(ranking, 2)
	if len(bars) != 2 {
		t.Fatalf("Expected ranking trimmed to 2, got %d", len(bars))
	}
	if bars[0].Label != "Vocabular.." {
		t.Errorf("Expected truncated leaf name Vocabular.., got %s", bars[0].Label)
	}
	if !strings.Contains(bars[0].Tooltip, "Languages::Japanese::Vocabularies") {
		t.Errorf("Expected tooltip to keep the full name, got %s", bars[0].Tooltip)
	}

	t.Run("ten-character names stay whole", func(t *testing.T) {
		bars := DeckBars([]domain.DeckActivity{{Name: "Vocabulary", Reviews: 5}}, 5)
		if bars[0].Label != "Vocabulary" {
			t.Errorf("Expected Vocabulary untouched, got %s", bars[0].Label)
		}
	})

	t.Run("multi-byte names truncate on rune boundaries", func(t *testing.T) {
		bars := DeckBars([]domain.DeckActivity{{Name: "ab日本語カードデッキ名前", Reviews: 3}}, 5)
		if bars[0].Label != "ab日本語カードデ.." {
			t.Errorf("Expected ab日本語カードデ.., got %s", bars[0].Label)
		}
		if !utf8.ValidString(bars[0].Label) {
			t.Errorf("Expected a valid UTF-8 label, got %q", bars[0].Label)
		}
	})
}

func TestDeckProgress(t *testing.T) {
	t.Run("empty decks render placeholder", func(t *testing.T) {
		out := DeckProgress(map[string]domain.Deck{}, false, 0)
		if !strings.Contains(out, "No data") {
			t.Errorf("Expected placeholder, got %s", out)
		}
	})

	t.Run("rows sorted by total with counts label", func(t *testing.T) {
		decks := map[string]domain.Deck{
			"1": {ID: "1", Name: "Small", Total: 10, Mature: 5},
			"2": {ID: "2", Name: "Big", Total: 2000, Mature: 1500},
		}
		out := DeckProgress(decks, false, 0)
		if !strings.Contains(out, "1,500/2,000") {
			t.Errorf("Expected grouped mature/total label, got %s", out)
		}
		if strings.Index(out, "Big") > strings.Index(out, "Small") {
			t.Error("Expected the biggest deck first")
		}
	})

	t.Run("long multi-byte names truncate on rune boundaries", func(t *testing.T) {
		decks := map[string]domain.Deck{
			"1": {ID: "1", Name: strings.Repeat("語", 40), Total: 10, Mature: 5},
		}
		out := DeckProgress(decks, false, 0)
		if !strings.Contains(out, strings.Repeat("語", 33)+"...") {
			t.Error("Expected the name cut at 33 runes")
		}
		if !utf8.ValidString(out) {
			t.Error("Expected the rendered SVG to stay valid UTF-8")
		}
	})
}

func TestStatsCard(t *testing.T) {
	cards := domain.CardCounts{Total: 100, New: 20, Learning: 10, Mature: 65, Suspended: 5}
	out := StatsCard(cards, 12, 340, false)

	for _, want := range []string{"Mature: 65", "Learning: 10", "New: 20", "Suspended: 5", "Streak: 12 days"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected stats card to contain %q", want)
		}
	}
	if strings.Count(out, "<path") != 3 {
		t.Errorf("Expected 3 pie segments, got %d", strings.Count(out, "<path"))
	}

	t.Run("zero active cards renders no pie", func(t *testing.T) {
		out := StatsCard(domain.CardCounts{}, 0, 0, false)
		if strings.Contains(out, "<path") {
			t.Error("Expected no pie segments for an empty collection")
		}
	})
}

func TestProgressRing(t *testing.T) {
	out := ProgressRing(75, "Mastery")
	if !strings.Contains(out, ">75%</text>") {
		t.Errorf("Expected percentage text, got %s", out)
	}
	if !strings.Contains(out, "stroke-dashoffset") {
		t.Error("Expected dash-offset arc")
	}
}

func TestProgressBar(t *testing.T) {
	out := ProgressBar(65, 95, "Mastery Progress")
	if !strings.Contains(out, "65 / 95 (68.4%)") {
		t.Errorf("Expected progress label, got %s", out)
	}

	t.Run("zero total does not divide by zero", func(t *testing.T) {
		out := ProgressBar(0, 0, "Empty")
		if !strings.Contains(out, "0 / 0 (0.0%)") {
			t.Errorf("Expected zero progress label, got %s", out)
		}
	})
}

func TestBadge(t *testing.T) {
	out := Badge("streak", "12 days", "#4c1")
	if !strings.Contains(out, ">streak</text>") || !strings.Contains(out, ">12 days</text>") {
		t.Errorf("Expected both badge cells, got %s", out)
	}
}
