package svg

import (
	"fmt"
	"strings"
	"time"

	"github.com/conorfennell/ankiview/internal/domain"
)

// Bar is one column of a bar chart.
type Bar struct {
	Label   string
	Tooltip string
	Value   int
}

// BarChartOptions control the shared bar renderer. The original charts only
// differed in width, palette, label rotation, and value suffix, so one
// parameterized layout covers all of them.
type BarChartOptions struct {
	// Width fixes the total image width. Zero derives it from the bars.
	Width int
	// BarWidth fixes the column width. Zero adapts it to fill Width.
	BarWidth int
	BarGap   int
	// ValueSuffix is appended to non-zero value labels, e.g. "m".
	ValueSuffix string
	// RotateLabels draws the below-bar labels at 45 degrees, which needs
	// extra bottom room for long deck names.
	RotateLabels bool
	Theme        func(dark bool) Theme
}

const (
	maxBarHeight = 80
	minBarHeight = 3
	barTopMargin = 20
)

// BarChart renders a vertical bar chart. An empty dataset renders the
// "No data" placeholder instead of failing.
func BarChart(bars []Bar, dark bool, opts BarChartOptions) string {
	if opts.Theme == nil {
		opts.Theme = GreenTheme
	}
	if opts.BarGap == 0 {
		opts.BarGap = 8
	}
	if opts.Width == 0 && opts.BarWidth == 0 {
		opts.BarWidth = 36
	}

	if len(bars) == 0 {
		width := opts.Width
		if width == 0 {
			width = CompactWidth
		}
		return Placeholder(width, dark)
	}

	theme := opts.Theme(dark)

	leftMargin := 25
	bottomMargin := 35
	if opts.RotateLabels {
		bottomMargin = 60
	}

	barWidth := opts.BarWidth
	width := opts.Width
	switch {
	case width == 0:
		// Derived width: room for the bars plus rotated label overhang.
		width = leftMargin + len(bars)*(barWidth+opts.BarGap) - opts.BarGap + 25
	case barWidth == 0:
		// Adaptive width: spread the bars across the fixed width.
		leftMargin = 40
		barWidth = (width - leftMargin - 10 - (len(bars)-1)*opts.BarGap) / len(bars)
		if barWidth < 4 {
			barWidth = 4
		}
	}
	height := barTopMargin + maxBarHeight + bottomMargin

	maxValue := 0
	for _, b := range bars {
		if b.Value > maxValue {
			maxValue = b.Value
		}
	}
	if maxValue == 0 {
		maxValue = 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`+"\n", width, height, width, height)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="%s"/>`+"\n", width, height, theme.BG)
	fmt.Fprintf(&sb, `<g transform="translate(%d, %d)">`+"\n", leftMargin, barTopMargin)

	for i, bar := range bars {
		x := i * (barWidth + opts.BarGap)
		barHeight := minBarHeight
		color := theme.BarEmpty
		if bar.Value > 0 {
			barHeight = bar.Value * maxBarHeight / maxValue
			if barHeight < minBarHeight {
				barHeight = minBarHeight
			}
			color = theme.Bar
		}
		barY := maxBarHeight - barHeight
		center := float64(x) + float64(barWidth)/2

		if bar.Value > 0 {
			fmt.Fprintf(&sb,
				`<text x="%.1f" y="%d" fill="%s" font-size="10" text-anchor="middle" font-family="%s" font-weight="600">%d%s</text>`+"\n",
				center, barY-8, theme.Text, fontFamily, bar.Value, opts.ValueSuffix)
		} else {
			fmt.Fprintf(&sb,
				`<text x="%.1f" y="%d" fill="%s" font-size="10" text-anchor="middle" font-family="%s">0</text>`+"\n",
				center, maxBarHeight-10, theme.Label, fontFamily)
		}

		rx := 2
		if barHeight <= 4 {
			rx = 1
		}
		fmt.Fprintf(&sb,
			`<rect x="%d" y="%d" width="%d" height="%d" fill="%s" rx="%d" ry="%d"><title>%s</title></rect>`+"\n",
			x, barY, barWidth, barHeight, color, rx, rx, escapeText(bar.Tooltip))

		if opts.RotateLabels {
			labelY := maxBarHeight + 12
			fmt.Fprintf(&sb,
				`<text x="%.1f" y="%d" fill="%s" font-size="10" font-family="%s" transform="rotate(45, %.1f, %d)">%s</text>`+"\n",
				center, labelY, theme.Label, fontFamily, center, labelY, escapeText(bar.Label))
		} else {
			fmt.Fprintf(&sb,
				`<text x="%.1f" y="%d" fill="%s" font-size="11" text-anchor="middle" font-family="%s">%s</text>`+"\n",
				center, maxBarHeight+18, theme.Label, fontFamily, escapeText(bar.Label))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// WeeklyBars builds the rolling 7-day review-count series ending today.
func WeeklyBars(daily map[string]int, today time.Time) []Bar {
	bars := make([]Bar, 0, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		date := day.Format(domain.DateFormat)
		count := daily[date]
		bars = append(bars, Bar{
			Label:   day.Format("01/02"),
			Tooltip: fmt.Sprintf("%d reviews on %s", count, date),
			Value:   count,
		})
	}
	return bars
}

// WeeklyMinuteBars builds the current calendar week's (Mon-Sun) study-time
// series in minutes.
func WeeklyMinuteBars(dailyMinutes map[string]int, today time.Time) []Bar {
	labels := [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))

	bars := make([]Bar, 0, 7)
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		date := day.Format(domain.DateFormat)
		minutes := dailyMinutes[date]
		bars = append(bars, Bar{
			Label:   labels[i],
			Tooltip: fmt.Sprintf("%d min on %s", minutes, date),
			Value:   minutes,
		})
	}
	return bars
}

// DeckBars builds a deck-ranking series, truncating names to fit under the
// rotated labels.
func DeckBars(ranking []domain.DeckActivity, maxDecks int) []Bar {
	if len(ranking) > maxDecks {
		ranking = ranking[:maxDecks]
	}
	bars := make([]Bar, 0, len(ranking))
	for _, deck := range ranking {
		name := deck.Name
		if idx := strings.LastIndex(name, "::"); idx >= 0 {
			name = name[idx+2:]
		}
		if runes := []rune(name); len(runes) > 10 {
			name = string(runes[:9]) + ".."
		}
		bars = append(bars, Bar{
			Label:   name,
			Tooltip: fmt.Sprintf("%d reviews - %s", deck.Reviews, deck.Name),
			Value:   deck.Reviews,
		})
	}
	return bars
}

// escapeText makes free text safe inside SVG element content.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
