package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/storage"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show or update study progress",
}

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current level, target level, and streak",
	RunE:  runProgressShow,
}

var setLevelCurrent bool

var progressSetLevelCmd = &cobra.Command{
	Use:   "set-level LEVEL",
	Short: "Set the target level, or the current level with --current",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgressSetLevel,
}

var statsRange string

var progressStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show review statistics",
	RunE:  runProgressStats,
}

func init() {
	rootCmd.AddCommand(progressCmd)
	progressCmd.AddCommand(progressShowCmd)
	progressCmd.AddCommand(progressSetLevelCmd)
	progressCmd.AddCommand(progressStatsCmd)

	progressSetLevelCmd.Flags().BoolVar(&setLevelCurrent, "current", false, "set the current level instead of the target level")
	progressStatsCmd.Flags().StringVar(&statsRange, "range", "all", "7d, 30d, or all")
}

func runProgressShow(cmd *cobra.Command, args []string) error {
	app, err := NewApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	progress, err := app.Store.GetProgress()
	if err != nil {
		return fmt.Errorf("failed to read progress: %w", err)
	}

	fmt.Printf("Current level: %s\n", progress.CurrentLevel)
	fmt.Printf("Target level:  %s\n", progress.TargetLevel)
	fmt.Printf("Streak:        %d day(s)\n", progress.StreakDays)
	if progress.LastReviewDate != nil {
		fmt.Printf("Last review:   %s\n", progress.LastReviewDate.Format("2006-01-02"))
	}
	if len(progress.Milestones) > 0 {
		fmt.Println("Milestones:")
		for _, m := range progress.Milestones {
			fmt.Printf("  - %s (%s)\n", m.Label, m.AchievedAt.Format("2006-01-02"))
		}
	}
	return nil
}

func runProgressSetLevel(cmd *cobra.Command, args []string) error {
	level, err := domain.ParseJLPTLevel(args[0])
	if err != nil {
		return err
	}

	app, err := NewApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	progress, err := app.Store.GetProgress()
	if err != nil {
		return fmt.Errorf("failed to read progress: %w", err)
	}

	if setLevelCurrent {
		progress.CurrentLevel = string(level)
	} else {
		progress.TargetLevel = string(level)
	}

	if err := app.Store.UpdateProgress(progress); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	if setLevelCurrent {
		fmt.Printf("Current level set to %s\n", level)
	} else {
		fmt.Printf("Target level set to %s\n", level)
	}
	return nil
}

func runProgressStats(cmd *cobra.Command, args []string) error {
	app, err := NewApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	dateRange, err := parseStatsRange(statsRange)
	if err != nil {
		return err
	}

	vocabByLevel, err := app.Stats.VocabCountByLevel()
	if err != nil {
		return fmt.Errorf("failed to compute vocab counts: %w", err)
	}
	kanjiByLevel, err := app.Stats.KanjiCountByLevel()
	if err != nil {
		return fmt.Errorf("failed to compute kanji counts: %w", err)
	}
	fmt.Println("Catalog size by level:")
	for _, level := range []domain.JLPTLevel{domain.N5, domain.N4, domain.N3, domain.N2, domain.N1, domain.None} {
		if vocabByLevel[level] == 0 && kanjiByLevel[level] == 0 {
			continue
		}
		fmt.Printf("  %s: %d vocab, %d kanji\n", level, vocabByLevel[level], kanjiByLevel[level])
	}

	flashMastered, err := app.Stats.Mastered(domain.ModeFlash, nil)
	if err != nil {
		return fmt.Errorf("failed to compute flash mastery: %w", err)
	}
	mcqMastered, err := app.Stats.Mastered(domain.ModeMCQ, nil)
	if err != nil {
		return fmt.Errorf("failed to compute mcq mastery: %w", err)
	}
	fmt.Printf("\nMastered (stability >= 21 days): %d flashcard, %d mcq\n", flashMastered, mcqMastered)

	retention, err := app.Stats.RetentionRate(dateRange)
	if err != nil {
		return fmt.Errorf("failed to compute retention rate: %w", err)
	}
	fmt.Printf("Flashcard retention rate: %.1f%%\n", retention)

	avgDuration, err := app.Stats.AvgReviewDurationMs(dateRange)
	if err != nil {
		return fmt.Errorf("failed to compute average duration: %w", err)
	}
	fmt.Printf("Average review duration: %.0f ms\n", avgDuration)

	mcqAccuracy, err := app.Stats.MCQAccuracyRate(nil, nil)
	if err != nil {
		return fmt.Errorf("failed to compute mcq accuracy: %w", err)
	}
	fmt.Printf("MCQ accuracy: %.1f%%\n", mcqAccuracy)

	byType, err := app.Stats.MCQStatsByType()
	if err != nil {
		return fmt.Errorf("failed to compute mcq stats by type: %w", err)
	}
	fmt.Printf("  vocab: %.1f%% (%d/%d)\n", byType.Vocab.Accuracy, byType.Vocab.Correct, byType.Vocab.Total)
	fmt.Printf("  kanji: %.1f%% (%d/%d)\n", byType.Kanji.Accuracy, byType.Kanji.Correct, byType.Kanji.Total)

	dist, err := app.Stats.MCQOptionDistribution(dateRange)
	if err != nil {
		return fmt.Errorf("failed to compute mcq option distribution: %w", err)
	}
	fmt.Printf("MCQ option distribution: A=%d B=%d C=%d D=%d\n", dist["A"], dist["B"], dist["C"], dist["D"])

	mostReviewed, err := app.Stats.MostReviewed(5)
	if err != nil {
		return fmt.Errorf("failed to compute most-reviewed items: %w", err)
	}
	if len(mostReviewed) > 0 {
		fmt.Println("\nMost reviewed items:")
		for _, r := range mostReviewed {
			item, err := app.Catalog.Get(r.ItemID, r.ItemKind)
			label := fmt.Sprintf("item %d", r.ItemID)
			if err == nil {
				label = item.DisplaySurface()
			}
			fmt.Printf("  %s (%s): %d review(s)\n", label, r.ItemKind, r.ReviewCount)
		}
	}

	return nil
}

func parseStatsRange(r string) (storage.DateRangeFilter, error) {
	now := time.Now()
	switch r {
	case "", "all":
		return storage.DateRangeFilter{}, nil
	case "7d":
		start := now.AddDate(0, 0, -7)
		return storage.DateRangeFilter{Start: &start}, nil
	case "30d":
		start := now.AddDate(0, 0, -30)
		return storage.DateRangeFilter{Start: &start}, nil
	default:
		return storage.DateRangeFilter{}, fmt.Errorf("invalid range %q (valid: 7d, 30d, all)", r)
	}
}
