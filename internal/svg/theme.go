// Package svg renders the fixed-layout chart images as static SVG markup.
package svg

import (
	"fmt"
	"os"
	"path/filepath"
)

// StandardWidth is the shared pixel width of the full-row charts so they
// align with the heatmap when stacked in the report.
const StandardWidth = 792

// CompactWidth fits two charts side by side in the report.
const CompactWidth = 390

const fontFamily = "-apple-system, BlinkMacSystemFont, Segoe UI, Helvetica, Arial, sans-serif"

// Theme is the palette for one light/dark rendering of a chart.
type Theme struct {
	BG       string
	Bar      string
	BarEmpty string
	Text     string
	Label    string
}

// GreenTheme is the default review-count palette.
func GreenTheme(dark bool) Theme {
	if dark {
		return Theme{BG: "#0d1117", Bar: "#26a641", BarEmpty: "#161b22", Text: "#e6edf3", Label: "#8b949e"}
	}
	return Theme{BG: "#ffffff", Bar: "#40c463", BarEmpty: "#ebedf0", Text: "#1f2328", Label: "#656d76"}
}

// PurpleTheme marks study-time charts apart from review counts.
func PurpleTheme(dark bool) Theme {
	if dark {
		return Theme{BG: "#0d1117", Bar: "#8957e5", BarEmpty: "#161b22", Text: "#e6edf3", Label: "#8b949e"}
	}
	return Theme{BG: "#ffffff", Bar: "#8250df", BarEmpty: "#ebedf0", Text: "#1f2328", Label: "#656d76"}
}

// OrangeTheme marks the monthly deck ranking.
func OrangeTheme(dark bool) Theme {
	if dark {
		return Theme{BG: "#0d1117", Bar: "#f78166", BarEmpty: "#21262d", Text: "#e6edf3", Label: "#8b949e"}
	}
	return Theme{BG: "#ffffff", Bar: "#fb8f44", BarEmpty: "#ebedf0", Text: "#1f2328", Label: "#656d76"}
}

// heatmapColors is the 5-level activity palette, index 0 meaning no activity.
func heatmapColors(dark bool) [5]string {
	if dark {
		return [5]string{"#161b22", "#0e4429", "#006d32", "#26a641", "#39d353"}
	}
	return [5]string{"#ebedf0", "#9be9a8", "#40c463", "#30a14e", "#216e39"}
}

// Placeholder is the rendering used when a chart has no data to show.
func Placeholder(width int, dark bool) string {
	bg, text := "#ffffff", "#656d76"
	if dark {
		bg, text = "#0d1117", "#8b949e"
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="40">
<rect width="%d" height="40" fill="%s"/>
<text x="%d" y="24" text-anchor="middle" font-family="system-ui, -apple-system, sans-serif" font-size="13" fill="%s">No data</text>
</svg>`, width, width, bg, width/2, text)
}

// WritePair renders a themed chart in both modes and writes name.svg and
// name-dark.svg under dir.
func WritePair(dir, name string, render func(dark bool) string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	for _, variant := range []struct {
		file string
		dark bool
	}{
		{name + ".svg", false},
		{name + "-dark.svg", true},
	} {
		path := filepath.Join(dir, variant.file)
		if err := os.WriteFile(path, []byte(render(variant.dark)), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// WriteFile writes a single unthemed rendering.
func WriteFile(dir, name, content string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
