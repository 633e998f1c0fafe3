package svg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conorfennell/ankiview/internal/domain"
)

// DeckProgress renders one mastery row per deck with cards: name, a thin
// gradient bar filled to mature/total, and the counts right-aligned.
func DeckProgress(decks map[string]domain.Deck, dark bool, maxDecks int) string {
	sorted := make([]domain.Deck, 0, len(decks))
	for _, d := range decks {
		if d.Total > 0 {
			sorted = append(sorted, d)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Total != sorted[j].Total {
			return sorted[i].Total > sorted[j].Total
		}
		return sorted[i].Name < sorted[j].Name
	})
	if maxDecks > 0 && len(sorted) > maxDecks {
		sorted = sorted[:maxDecks]
	}

	if len(sorted) == 0 {
		return Placeholder(StandardWidth, dark)
	}

	bg, text, subtext, barBG := "#ffffff", "#24292f", "#656d76", "#eaeef2"
	gradStart, gradEnd := "#2da44e", "#3fb950"
	if dark {
		bg, text, subtext, barBG = "#0d1117", "#e6edf3", "#8b949e", "#21262d"
		gradStart, gradEnd = "#238636", "#2ea043"
	}

	const rowHeight, barHeight = 38, 6
	width := StandardWidth
	height := len(sorted) * rowHeight

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`+"\n", width, height)
	sb.WriteString("<defs>\n")
	fmt.Fprintf(&sb, `  <linearGradient id="barGrad" x1="0%%" y1="0%%" x2="100%%" y2="0%%">`+"\n")
	fmt.Fprintf(&sb, `    <stop offset="0%%" style="stop-color:%s"/>`+"\n", gradStart)
	fmt.Fprintf(&sb, `    <stop offset="100%%" style="stop-color:%s"/>`+"\n", gradEnd)
	sb.WriteString("  </linearGradient>\n</defs>\n")
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="%s"/>`+"\n", width, height, bg)

	for i, deck := range sorted {
		y := i*rowHeight + 14

		name := deck.Name
		if runes := []rune(name); len(runes) > 36 {
			name = string(runes[:33]) + "..."
		}

		fmt.Fprintf(&sb, `<text x="0" y="%d" font-family="system-ui, -apple-system, sans-serif" font-size="13" fill="%s">%s</text>`+"\n",
			y, text, escapeText(name))
		fmt.Fprintf(&sb, `<text x="%d" y="%d" text-anchor="end" font-family="system-ui, -apple-system, sans-serif" font-size="12" fill="%s">%s/%s</text>`+"\n",
			width, y, subtext, groupThousands(deck.Mature), groupThousands(deck.Total))

		barY := y + 10
		fmt.Fprintf(&sb, `<rect x="0" y="%d" width="%d" height="%d" fill="%s" rx="3"/>`+"\n", barY, width, barHeight, barBG)

		if deck.Mature > 0 {
			fill := float64(deck.Mature) / float64(deck.Total) * float64(width)
			fmt.Fprintf(&sb, `<rect x="0" y="%d" width="%.1f" height="%d" fill="url(#barGrad)" rx="3"/>`+"\n", barY, fill, barHeight)
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// groupThousands formats n with comma separators.
func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var sb strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}
