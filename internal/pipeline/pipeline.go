// Package pipeline sequences one full sync run: read, compute, export,
// render, report, publish.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/conorfennell/ankiview/internal/anki"
	"github.com/conorfennell/ankiview/internal/config"
	"github.com/conorfennell/ankiview/internal/domain"
	"github.com/conorfennell/ankiview/internal/export"
	"github.com/conorfennell/ankiview/internal/gitrepo"
	"github.com/conorfennell/ankiview/internal/report"
	"github.com/conorfennell/ankiview/internal/stats"
	"github.com/conorfennell/ankiview/internal/svg"
)

// Runner executes the sync pipeline for one configuration.
type Runner struct {
	cfg config.Config
	log *slog.Logger
}

// New returns a Runner.
func New(cfg config.Config, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, log: logger}
}

// Run executes every stage. Reader and export failures abort the run;
// version-control failures are logged and swallowed so the statistics still
// land on disk.
func (r *Runner) Run() error {
	snap, err := r.readAndCompute()
	if err != nil {
		return err
	}
	r.log.Info("statistics computed",
		"total_cards", snap.Cards.Total,
		"streak", snap.Streak,
		"weekly_reviews", snap.WeeklyReviews,
	)

	exporter, err := export.NewExporter(r.cfg.DataPath())
	if err != nil {
		return err
	}
	if err := exporter.WriteSnapshot(snap); err != nil {
		return err
	}
	if err := exporter.AppendHistory(snap); err != nil {
		return err
	}
	if err := exporter.WriteHeatmap(snap); err != nil {
		return err
	}
	r.log.Info("exported data files", "dir", r.cfg.DataPath())

	if err := r.renderCharts(snap); err != nil {
		return err
	}
	r.log.Info("rendered charts", "dir", r.cfg.OutputPath())

	generator := report.NewGenerator(exporter.StatsPath(), r.cfg.OutputDir, r.cfg.Repo)
	readmePath, err := generator.Write()
	if err != nil {
		return err
	}
	r.log.Info("generated report", "path", readmePath)

	r.publish(snap)
	return nil
}

func (r *Runner) readAndCompute() (domain.Snapshot, error) {
	dbPath, err := r.cfg.ResolveDatabasePath()
	if err != nil {
		return domain.Snapshot{}, err
	}
	r.log.Info("reading collection", "db", dbPath)

	reader, err := anki.Open(dbPath)
	if err != nil {
		return domain.Snapshot{}, err
	}
	defer reader.Close()

	return stats.NewCalculator(reader).Compute(r.cfg.Days)
}

func (r *Runner) renderCharts(snap domain.Snapshot) error {
	outDir := r.cfg.OutputPath()
	now := snap.GeneratedAt

	pairs := []struct {
		name   string
		render func(dark bool) string
	}{
		{"heatmap", func(dark bool) string {
			return svg.Heatmap(snap.Heatmap, now, dark)
		}},
		{"decks", func(dark bool) string {
			return svg.DeckProgress(snap.Decks, dark, 0)
		}},
		{"weekly", func(dark bool) string {
			return svg.BarChart(svg.WeeklyBars(snap.DailyReviews, now), dark, svg.BarChartOptions{
				Width:    svg.CompactWidth,
				BarWidth: 42,
			})
		}},
		{"time", func(dark bool) string {
			return svg.BarChart(svg.WeeklyMinuteBars(snap.DailyMinutes, now), dark, svg.BarChartOptions{
				BarWidth:    36,
				ValueSuffix: "m",
				Theme:       svg.PurpleTheme,
			})
		}},
		{"reviews", func(dark bool) string {
			return svg.BarChart(svg.DeckBars(snap.WeeklyDeckReviews, 7), dark, svg.BarChartOptions{
				BarWidth:     36,
				RotateLabels: true,
			})
		}},
		{"cards", func(dark bool) string {
			return svg.BarChart(svg.DeckBars(snap.MonthlyDeckReviews, 10), dark, svg.BarChartOptions{
				Width:        svg.StandardWidth,
				BarGap:       12,
				RotateLabels: true,
				Theme:        svg.OrangeTheme,
			})
		}},
		{"stats-card", func(dark bool) string {
			return svg.StatsCard(snap.Cards, snap.Streak, snap.WeeklyReviews, dark)
		}},
	}
	for _, pair := range pairs {
		if err := svg.WritePair(outDir, pair.name, pair.render); err != nil {
			return err
		}
	}

	active := snap.Cards.Active()
	masteryPct := 0
	if active > 0 {
		masteryPct = snap.Cards.Mature * 100 / active
	}
	if err := svg.WriteFile(outDir, "progress-ring.svg", svg.ProgressRing(masteryPct, "Mastery")); err != nil {
		return err
	}
	if err := svg.WriteFile(outDir, "progress-bar.svg", svg.ProgressBar(snap.Cards.Mature, active, "Mastery Progress")); err != nil {
		return err
	}
	streakBadge := svg.Badge("streak", fmt.Sprintf("%d days", snap.Streak), "#4c1")
	return svg.WriteFile(outDir, "streak-badge.svg", streakBadge)
}

// publish stages and commits the artifacts. Every failure here is
// non-fatal: the run already produced its outputs.
func (r *Runner) publish(snap domain.Snapshot) {
	if !r.cfg.Commit {
		r.log.Info("skipping commit")
		return
	}

	files := []string{
		filepath.Join(r.cfg.DataDir, "stats.json"),
		filepath.Join(r.cfg.DataDir, "history.json"),
		filepath.Join(r.cfg.DataDir, "heatmap.json"),
		"README.md",
	}
	for _, name := range []string{
		"heatmap", "decks", "weekly", "time", "reviews", "cards", "stats-card",
	} {
		files = append(files,
			filepath.Join(r.cfg.OutputDir, name+".svg"),
			filepath.Join(r.cfg.OutputDir, name+"-dark.svg"),
		)
	}
	files = append(files,
		filepath.Join(r.cfg.OutputDir, "progress-ring.svg"),
		filepath.Join(r.cfg.OutputDir, "progress-bar.svg"),
		filepath.Join(r.cfg.OutputDir, "streak-badge.svg"),
	)

	message := fmt.Sprintf("chore: sync anki stats (%s)", snap.GeneratedAt.Format(domain.DateFormat))
	publisher := gitrepo.NewPublisher(r.cfg.Repo)

	committed, err := publisher.Publish(files, message, r.cfg.Push, r.cfg.Force)
	switch {
	case errors.Is(err, gitrepo.ErrNotARepository):
		r.log.Info("not a git repository, skipping commit", "repo", r.cfg.Repo)
	case err != nil:
		r.log.Warn("version-control step failed", "error", err)
	case committed:
		r.log.Info("committed", "message", message, "pushed", r.cfg.Push)
	default:
		r.log.Info("no changes to commit")
	}
}
