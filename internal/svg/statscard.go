package svg

import (
	"fmt"
	"math"
	"strings"

	"github.com/conorfennell/ankiview/internal/domain"
)

// StatsCard renders the 400x200 overview card: a pie of card states, its
// legend, and a totals row.
func StatsCard(cards domain.CardCounts, streak, weeklyReviews int, dark bool) string {
	bg, border, text, subtext := "#ffffff", "#e1e4e8", "#24292f", "#57606a"
	if dark {
		bg, border, text, subtext = "#0d1117", "#30363d", "#c9d1d9", "#8b949e"
	}

	const (
		matureColor    = "#40c463"
		learningColor  = "#ffc107"
		newColor       = "#58a6ff"
		suspendedColor = "#6e7681"
	)

	active := cards.Active()
	var maturePct, learningPct, newPct float64
	if active > 0 {
		maturePct = float64(cards.Mature) / float64(active) * 100
		learningPct = float64(cards.Learning) / float64(active) * 100
		newPct = float64(cards.New) / float64(active) * 100
	}

	const width, height = 400, 200

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", width, height, width, height)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="%s" rx="6"/>`+"\n", width, height, bg)
	fmt.Fprintf(&sb, `<rect x="0.5" y="0.5" width="%d" height="%d" fill="none" stroke="%s" rx="6"/>`+"\n", width-1, height-1, border)
	fmt.Fprintf(&sb, `<text x="20" y="30" font-family="system-ui, -apple-system, sans-serif" font-size="16" font-weight="600" fill="%s">Card Statistics</text>`+"\n", text)

	sb.WriteString(pieChart(150, 110, 50, []pieSegment{
		{pct: maturePct, color: matureColor},
		{pct: learningPct, color: learningColor},
		{pct: newPct, color: newColor},
	}))

	sb.WriteString(`<g transform="translate(220, 55)">` + "\n")
	legend := []struct {
		y     int
		color string
		fill  string
		label string
		count int
	}{
		{0, matureColor, text, "Mature", cards.Mature},
		{20, learningColor, text, "Learning", cards.Learning},
		{40, newColor, text, "New", cards.New},
		{60, suspendedColor, subtext, "Suspended", cards.Suspended},
	}
	for _, row := range legend {
		fmt.Fprintf(&sb, `<rect y="%d" width="12" height="12" fill="%s" rx="2"/>`+"\n", row.y, row.color)
		fmt.Fprintf(&sb, `<text x="18" y="%d" font-family="system-ui, -apple-system, sans-serif" font-size="12" fill="%s">%s: %s</text>`+"\n",
			row.y+10, row.fill, row.label, groupThousands(row.count))
	}
	sb.WriteString("</g>\n")

	fmt.Fprintf(&sb, `<text x="20" y="175" font-family="system-ui, -apple-system, sans-serif" font-size="11" fill="%s">Total: %s | Streak: %d days | Weekly: %s reviews</text>`+"\n",
		subtext, groupThousands(cards.Total), streak, groupThousands(weeklyReviews))

	sb.WriteString("</svg>")
	return sb.String()
}

type pieSegment struct {
	pct   float64
	color string
}

// pieChart draws filled wedges clockwise from twelve o'clock. Arc endpoints
// come straight from the segment angles; the large-arc flag flips past 180
// degrees.
func pieChart(cx, cy, r float64, segments []pieSegment) string {
	var sb strings.Builder
	startAngle := -90.0

	for _, seg := range segments {
		if seg.pct <= 0 {
			continue
		}
		angle := seg.pct * 3.6
		endAngle := startAngle + angle

		startRad := startAngle * math.Pi / 180
		endRad := endAngle * math.Pi / 180
		x1 := cx + r*math.Cos(startRad)
		y1 := cy + r*math.Sin(startRad)
		x2 := cx + r*math.Cos(endRad)
		y2 := cy + r*math.Sin(endRad)

		largeArc := 0
		if angle > 180 {
			largeArc = 1
		}

		fmt.Fprintf(&sb, `<path d="M %.1f %.1f L %.2f %.2f A %.1f %.1f 0 %d 1 %.2f %.2f Z" fill="%s"/>`+"\n",
			cx, cy, x1, y1, r, r, largeArc, x2, y2, seg.color)
		startAngle = endAngle
	}
	return sb.String()
}

// ProgressRing renders a circular progress indicator with the percentage
// centered inside.
func ProgressRing(percentage int, label string) string {
	const (
		size        = 120.0
		strokeWidth = 12.0
	)
	center := size / 2
	radius := (size - strokeWidth) / 2
	circumference := 2 * math.Pi * radius
	dashOffset := circumference * (1 - float64(percentage)/100)

	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
  <circle cx="%.0f" cy="%.0f" r="%.0f" fill="none" stroke="#e0e0e0" stroke-width="%.0f"/>
  <circle cx="%.0f" cy="%.0f" r="%.0f" fill="none" stroke="#4c1" stroke-width="%.0f"
    stroke-linecap="round" stroke-dasharray="%.2f" stroke-dashoffset="%.2f"
    transform="rotate(-90 %.0f %.0f)"/>
  <text x="%.0f" y="%.0f" text-anchor="middle" dominant-baseline="middle"
    font-family="system-ui, -apple-system, sans-serif" font-size="24" font-weight="bold" fill="#333">%d%%</text>
  <text x="%.0f" y="%.0f" text-anchor="middle" dominant-baseline="middle"
    font-family="system-ui, -apple-system, sans-serif" font-size="10" fill="#666">%s</text>
</svg>`,
		size, size, size, size,
		center, center, radius, strokeWidth,
		center, center, radius, strokeWidth,
		circumference, dashOffset, center, center,
		center, center, percentage,
		center, center+18, escapeText(label))
}

// ProgressBar renders a horizontal progress bar with a current/total label.
func ProgressBar(current, total int, label string) string {
	const (
		width  = 300.0
		height = 30.0
	)
	var percentage float64
	if total > 0 {
		percentage = float64(current) / float64(total) * 100
	}
	fillWidth := (width - 4) * percentage / 100

	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
  <text x="0" y="12" font-family="system-ui, -apple-system, sans-serif" font-size="12" fill="#57606a">%s</text>
  <rect x="0" y="18" width="%.0f" height="%.0f" fill="#e0e0e0" rx="4"/>
  <rect x="2" y="20" width="%.1f" height="%.0f" fill="#40c463" rx="3"/>
  <text x="%.0f" y="%.0f" text-anchor="middle" font-family="system-ui, -apple-system, sans-serif" font-size="12" font-weight="500" fill="#fff">%s / %s (%.1f%%)</text>
</svg>`,
		width, height+20, width, height+20,
		escapeText(label),
		width, height,
		fillWidth, height-4,
		width/2, 18+height/2+5,
		groupThousands(current), groupThousands(total), percentage)
}

// Badge renders a shields-style two-cell badge. Cell widths use a 7px per
// character heuristic, which is close enough for the short labels used here.
func Badge(label, value, color string) string {
	labelWidth := len(label)*7 + 10
	valueWidth := len(value)*7 + 10
	totalWidth := labelWidth + valueWidth

	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="20">
  <linearGradient id="smooth" x2="0" y2="100%%">
    <stop offset="0" stop-color="#bbb" stop-opacity=".1"/>
    <stop offset="1" stop-opacity=".1"/>
  </linearGradient>
  <clipPath id="round">
    <rect width="%d" height="20" rx="3" fill="#fff"/>
  </clipPath>
  <g clip-path="url(#round)">
    <rect width="%d" height="20" fill="#555"/>
    <rect x="%d" width="%d" height="20" fill="%s"/>
    <rect width="%d" height="20" fill="url(#smooth)"/>
  </g>
  <g fill="#fff" text-anchor="middle" font-family="DejaVu Sans,Verdana,Geneva,sans-serif" font-size="11">
    <text x="%d" y="14" fill="#010101" fill-opacity=".3">%s</text>
    <text x="%d" y="13" fill="#fff">%s</text>
    <text x="%d" y="14" fill="#010101" fill-opacity=".3">%s</text>
    <text x="%d" y="13" fill="#fff">%s</text>
  </g>
</svg>`,
		totalWidth, totalWidth,
		labelWidth, labelWidth, valueWidth, color, totalWidth,
		labelWidth/2, escapeText(label), labelWidth/2, escapeText(label),
		labelWidth+valueWidth/2, escapeText(value), labelWidth+valueWidth/2, escapeText(value))
}
