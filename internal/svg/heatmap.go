package svg

import (
	"fmt"
	"strings"
	"time"

	"github.com/conorfennell/ankiview/internal/domain"
)

const (
	cellSize   = 11
	cellMargin = 3
	gridWeeks  = 53
	gridDays   = 7
)

var monthLabels = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Only Mon, Wed, Fri get row labels, GitHub style.
var dayLabels = [7]string{"", "Mon", "", "Wed", "", "Fri", ""}

// colorLevel buckets a count into the 5-level palette by its ratio to the
// busiest day.
func colorLevel(count, maxCount int) int {
	if count == 0 {
		return 0
	}
	if maxCount == 0 {
		return 1
	}
	ratio := float64(count) / float64(maxCount)
	switch {
	case ratio < 0.25:
		return 1
	case ratio < 0.5:
		return 2
	case ratio < 0.75:
		return 3
	default:
		return 4
	}
}

// Heatmap renders the 53-week activity grid. Columns are Sunday-anchored
// weeks; the buckets only supply the per-date counts, so gaps simply render
// as empty cells.
func Heatmap(buckets []domain.HeatmapBucket, today time.Time, dark bool) string {
	colors := heatmapColors(dark)

	leftMargin := 40
	topMargin := 20
	width := leftMargin + gridWeeks*(cellSize+cellMargin) + 10
	height := topMargin + gridDays*(cellSize+cellMargin) + 30

	maxCount := 1
	countByDate := make(map[string]int, len(buckets))
	for _, b := range buckets {
		countByDate[b.Date] = b.Count
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	daysSinceSunday := int(day.Weekday())
	endOfWeek := day.AddDate(0, 0, 6-daysSinceSunday)
	startDate := endOfWeek.AddDate(0, 0, -(52*7 + 6))

	bg, text := "#ffffff", "#1f2328"
	if dark {
		bg, text = "#0d1117", "#e6edf3"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`+"\n", width, height, width, height)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="%s"/>`+"\n", width, height, bg)
	fmt.Fprintf(&sb, `<g transform="translate(%d, %d)">`+"\n", leftMargin, topMargin)

	for i, label := range dayLabels {
		if label == "" {
			continue
		}
		y := i*(cellSize+cellMargin) + cellSize - 2
		fmt.Fprintf(&sb, `<text x="-38" y="%d" fill="%s" font-size="11" font-family="%s">%s</text>`+"\n", y, text, fontFamily, label)
	}

	type monthMark struct {
		week  int
		label string
	}
	var months []monthMark
	currentMonth := time.Month(0)

	week := 0
	for current := startDate; !current.After(day) && week < gridWeeks; current = current.AddDate(0, 0, 1) {
		sundayWeekday := int(current.Weekday())

		if sundayWeekday == 0 && current.Month() != currentMonth {
			currentMonth = current.Month()
			months = append(months, monthMark{week: week, label: monthLabels[currentMonth-1]})
		}

		date := current.Format(domain.DateFormat)
		count := countByDate[date]
		color := colors[colorLevel(count, maxCount)]

		x := week * (cellSize + cellMargin)
		y := sundayWeekday * (cellSize + cellMargin)
		fmt.Fprintf(&sb,
			`<rect x="%d" y="%d" width="%d" height="%d" fill="%s" rx="2" ry="2"><title>%d reviews on %s</title></rect>`+"\n",
			x, y, cellSize, cellSize, color, count, date)

		if sundayWeekday == 6 {
			week++
		}
	}

	// Month labels, skipping any that would crowd the previous one.
	lastLabelWeek := -4
	for _, m := range months {
		if m.week-lastLabelWeek < 4 {
			continue
		}
		x := m.week * (cellSize + cellMargin)
		fmt.Fprintf(&sb, `<text x="%d" y="-5" fill="%s" font-size="13" font-family="%s">%s</text>`+"\n", x, text, fontFamily, m.label)
		lastLabelWeek = m.week
	}

	sb.WriteString("</g>\n")

	legendY := height - 15
	legendX := width - 120
	fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="%s" font-size="11" font-family="%s">Less</text>`+"\n", legendX-30, legendY+8, text, fontFamily)
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" rx="2" ry="2"/>`+"\n",
			legendX+i*14, legendY, cellSize, cellSize, colors[i])
	}
	fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="%s" font-size="11" font-family="%s">More</text>`+"\n", legendX+75, legendY+8, text, fontFamily)

	sb.WriteString("</svg>")
	return sb.String()
}
