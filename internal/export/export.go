// Package export persists computed statistics as JSON files.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/conorfennell/ankiview/internal/domain"
)

// ErrNoSnapshot indicates a later pipeline stage ran before the snapshot
// was exported.
var ErrNoSnapshot = errors.New("stats snapshot not found")

// HistoryLimit is the trailing window kept in the history file.
const HistoryLimit = 365

const (
	statsFile   = "stats.json"
	historyFile = "history.json"
	heatmapFile = "heatmap.json"
)

// Exporter writes snapshot, history, and heatmap files into one directory.
type Exporter struct {
	dir string
}

// NewExporter returns an Exporter rooted at dir, creating it if needed.
func NewExporter(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &Exporter{dir: dir}, nil
}

// StatsPath returns the path of the snapshot file.
func (e *Exporter) StatsPath() string { return filepath.Join(e.dir, statsFile) }

// HistoryPath returns the path of the rolling history file.
func (e *Exporter) HistoryPath() string { return filepath.Join(e.dir, historyFile) }

// HeatmapPath returns the path of the heatmap data file.
func (e *Exporter) HeatmapPath() string { return filepath.Join(e.dir, heatmapFile) }

// WriteSnapshot writes the full snapshot to stats.json.
func (e *Exporter) WriteSnapshot(snap domain.Snapshot) error {
	return writeJSON(e.StatsPath(), snap)
}

// ReadSnapshot reads back the exported snapshot.
func ReadSnapshot(path string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return snap, fmt.Errorf("%s: %w", path, ErrNoSnapshot)
		}
		return snap, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return snap, nil
}

// WriteHeatmap writes the heatmap buckets to their own file for downstream
// processing.
func (e *Exporter) WriteHeatmap(snap domain.Snapshot) error {
	return writeJSON(e.HeatmapPath(), snap.Heatmap)
}

// AppendHistory folds the snapshot's key metrics into the rolling history
// file. A rerun on the same calendar day overwrites that day's entry, and
// the file is truncated to the trailing HistoryLimit entries.
func (e *Exporter) AppendHistory(snap domain.Snapshot) error {
	history, err := e.readHistory()
	if err != nil {
		return err
	}

	entry := domain.HistoryEntry{
		Date:              snap.GeneratedAt.Format(domain.DateFormat),
		TotalCards:        snap.Cards.Total,
		MatureCards:       snap.Cards.Mature,
		NewCards:          snap.Cards.New,
		Streak:            snap.Streak,
		WeeklyReviews:     snap.WeeklyReviews,
		WeeklyTimeMinutes: snap.WeeklyTimeMinutes,
	}

	if n := len(history); n > 0 && history[n-1].Date == entry.Date {
		history[n-1] = entry
	} else {
		history = append(history, entry)
	}
	if len(history) > HistoryLimit {
		history = history[len(history)-HistoryLimit:]
	}

	return writeJSON(e.HistoryPath(), history)
}

func (e *Exporter) readHistory() ([]domain.HistoryEntry, error) {
	data, err := os.ReadFile(e.HistoryPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	var history []domain.HistoryEntry
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	return history, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
