// Package report assembles the Markdown summary that embeds the generated
// charts.
package report

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conorfennell/ankiview/internal/domain"
	"github.com/conorfennell/ankiview/internal/export"
)

// maxDeckRows bounds the Top Decks table.
const maxDeckRows = 10

// Generator builds README.md from an exported snapshot.
type Generator struct {
	statsPath string
	outputRel string
	repoRoot  string
}

// NewGenerator returns a Generator. outputRel is the image directory
// relative to the repository root, as it should appear in Markdown links.
func NewGenerator(statsPath, outputRel, repoRoot string) *Generator {
	return &Generator{statsPath: statsPath, outputRel: outputRel, repoRoot: repoRoot}
}

// Write loads the exported snapshot and writes README.md at the repository
// root, returning its path.
func (g *Generator) Write() (string, error) {
	snap, err := export.ReadSnapshot(g.statsPath)
	if err != nil {
		return "", err
	}

	readmePath := filepath.Join(g.repoRoot, "README.md")
	if err := os.WriteFile(readmePath, []byte(g.Render(snap)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write README: %w", err)
	}
	return readmePath, nil
}

// Render produces the full README content.
func (g *Generator) Render(snap domain.Snapshot) string {
	var sb strings.Builder

	sb.WriteString("# Anki Statistics\n\n")
	sb.WriteString(g.badges(snap))
	sb.WriteString("\n\n## Review Activity\n\n")
	sb.WriteString(g.picture("Review Heatmap", "heatmap"))
	sb.WriteString("\n## Statistics\n\n")
	sb.WriteString(g.picture("Statistics", "stats-card"))
	sb.WriteString("\n## This Week\n\n")
	sb.WriteString(g.picture("Weekly Reviews", "weekly"))
	sb.WriteString(g.picture("Weekly Study Time", "time"))
	sb.WriteString("\n## Deck Activity\n\n")
	sb.WriteString(g.picture("Deck Reviews This Week", "reviews"))
	sb.WriteString(g.picture("Deck Reviews This Month", "cards"))
	sb.WriteString("\n## Progress\n\n")
	fmt.Fprintf(&sb, "<img src=\"%s\" alt=\"Progress\" width=\"300\">\n", g.imagePath("progress-bar.svg"))
	sb.WriteString("\n## Deck Progress\n\n")
	sb.WriteString(g.picture("Deck Progress", "decks"))
	sb.WriteString(g.decksTable(snap))

	return sb.String()
}

// badges renders the shields.io badge row.
func (g *Generator) badges(snap domain.Snapshot) string {
	date := snap.GeneratedAt.Format(domain.DateFormat)
	badges := []string{
		// shields.io encodes a literal hyphen as a double hyphen.
		fmt.Sprintf("![Last Sync](https://img.shields.io/badge/Last_Sync-%s-blue)",
			strings.ReplaceAll(date, "-", "--")),
		fmt.Sprintf("![Total Cards](https://img.shields.io/badge/Total_Cards-%s-informational)",
			underscoreThousands(snap.Cards.Total)),
		fmt.Sprintf("![Streak](https://img.shields.io/badge/Streak-%d_days-%s)",
			snap.Streak, streakColor(snap.Streak)),
	}

	active := snap.Cards.Active()
	masteryPct := 0
	if active > 0 {
		masteryPct = snap.Cards.Mature * 100 / active
	}
	badges = append(badges, fmt.Sprintf("![Mastery](https://img.shields.io/badge/Mastery-%d%%25-%s)",
		masteryPct, masteryColor(masteryPct)))

	return strings.Join(badges, " ")
}

// picture emits the light/dark conditional embed for a themed chart pair.
func (g *Generator) picture(alt, name string) string {
	light := g.imagePath(name + ".svg")
	dark := g.imagePath(name + "-dark.svg")
	return fmt.Sprintf(`<picture>
  <source media="(prefers-color-scheme: dark)" srcset="%s">
  <source media="(prefers-color-scheme: light)" srcset="%s">
  <img alt="%s" src="%s">
</picture>
`, dark, light, alt, light)
}

func (g *Generator) imagePath(file string) string {
	return path.Join(filepath.ToSlash(g.outputRel), file)
}

// decksTable renders the collapsible Top Decks table.
func (g *Generator) decksTable(snap domain.Snapshot) string {
	decks := make([]domain.Deck, 0, len(snap.Decks))
	for _, d := range snap.Decks {
		decks = append(decks, d)
	}
	sort.Slice(decks, func(i, j int) bool {
		if decks[i].Total != decks[j].Total {
			return decks[i].Total > decks[j].Total
		}
		return decks[i].Name < decks[j].Name
	})
	if len(decks) > maxDeckRows {
		decks = decks[:maxDeckRows]
	}
	if len(decks) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n<details>\n<summary><strong>Top Decks</strong></summary>\n\n")
	sb.WriteString("| Deck | Total | Mature | New |\n")
	sb.WriteString("|------|-------|--------|-----|\n")
	for _, deck := range decks {
		name := deck.Name
		if runes := []rune(name); len(runes) > 40 {
			name = string(runes[:37]) + "..."
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			name, commaThousands(deck.Total), commaThousands(deck.Mature), commaThousands(deck.New))
	}
	sb.WriteString("\n</details>\n")
	return sb.String()
}

func streakColor(streak int) string {
	switch {
	case streak >= 7:
		return "brightgreen"
	case streak >= 3:
		return "green"
	default:
		return "yellow"
	}
}

func masteryColor(pct int) string {
	switch {
	case pct >= 80:
		return "brightgreen"
	case pct >= 50:
		return "green"
	default:
		return "yellow"
	}
}

// underscoreThousands groups digits with underscores, which shields.io
// renders as spaces.
func underscoreThousands(n int) string {
	return strings.ReplaceAll(commaThousands(n), ",", "_")
}

func commaThousands(n int) string {
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
