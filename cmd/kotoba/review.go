package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/session"
)

var (
	reviewLimit int
	reviewLevel string
	reviewKind  string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Start a flashcard review session",
	Long: `Start an interactive free-recall review session. Items due for review are
presented one at a time; rate your own recall (Again|Hard|Good|Easy) and the
next due date is rescheduled with FSRS.`,
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().IntVar(&reviewLimit, "limit", 0, "maximum items this session (0 = use configured default)")
	reviewCmd.Flags().StringVar(&reviewLevel, "level", "", "restrict to a JLPT level (n5..n1)")
	reviewCmd.Flags().StringVar(&reviewKind, "kind", "", "restrict to vocab or kanji (default: both)")
}

func runReview(cmd *cobra.Command, args []string) error {
	app, err := NewApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	level, kind, err := parseLevelKind(reviewLevel, reviewKind)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := ensureReviews(app, app.Flash, kind, level, now); err != nil {
		return fmt.Errorf("failed to prepare reviews: %w", err)
	}

	limit := reviewLimit
	if limit <= 0 {
		limit = app.Config.Review.MaxItemsPerSession
	}

	sess, err := app.FlashSvc.Start(session.Options{
		JLPTLevel: level,
		ItemKind:  kind,
		MaxItems:  limit,
		Shuffle:   app.Config.Review.Shuffle,
	}, now)
	if err != nil {
		return fmt.Errorf("failed to start review session: %w", err)
	}

	if sess.ItemsRemaining == 0 {
		fmt.Println("Nothing due for review right now.")
		return nil
	}
	fmt.Printf("Starting review session with %d item(s) due.\n", sess.ItemsRemaining)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		review, err := app.FlashSvc.Next(sess.ID)
		if err != nil {
			break
		}

		item, err := app.Catalog.Get(review.ItemID, domain.ItemKind(review.ItemKind))
		if err != nil {
			return fmt.Errorf("failed to load item %d: %w", review.ItemID, err)
		}

		fmt.Println("\n" + strings.Repeat("-", 40))
		printItem(item)

		fmt.Print("Press Enter to reveal the meaning (or 'q' to quit): ")
		if !scanner.Scan() {
			break
		}
		if isQuit(scanner.Text()) {
			fmt.Println("Ending session early.")
			break
		}

		printMeaning(item, app.Config.MCQ.DefaultLanguage)

		var rating domain.Rating
		for {
			fmt.Print("Rate your recall (1=Again, 2=Hard, 3=Good, 4=Easy, q=quit): ")
			if !scanner.Scan() {
				return fmt.Errorf("failed to read rating")
			}
			input := strings.TrimSpace(scanner.Text())
			if isQuit(input) {
				fmt.Println("Ending session early.")
				goto cleanup
			}
			parsed, err := domain.ParseRating(input)
			if err != nil {
				fmt.Printf("Invalid rating: %v\n", err)
				continue
			}
			rating = parsed
			break
		}

		if err := app.FlashSvc.SubmitRating(sess.ID, review.ID, rating, nil, time.Now()); err != nil {
			return fmt.Errorf("failed to submit rating: %w", err)
		}
		fmt.Printf("Recorded: %s\n", rating.String())
	}

cleanup:
	stats, err := app.FlashSvc.End(sess.ID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to finalize session: %w", err)
	}
	fmt.Printf("\nSession complete: %d item(s) reviewed in %v.\n", stats.ItemsReviewed, stats.Duration.Round(time.Second))
	for _, r := range []domain.Rating{domain.Again, domain.Hard, domain.Good, domain.Easy} {
		if n := stats.RatingCounts[r]; n > 0 {
			fmt.Printf("  %s: %d\n", r.String(), n)
		}
	}
	return nil
}

func printItem(item domain.Item) {
	switch v := item.(type) {
	case *domain.VocabItem:
		fmt.Printf("%s (%s)\n", v.Surface, v.Reading)
	case *domain.KanjiItem:
		fmt.Printf("%s\n", v.Surface)
	default:
		fmt.Println(item.DisplaySurface())
	}
}

func printMeaning(item domain.Item, lang string) {
	language, err := domain.ParseLanguage(lang)
	if err != nil {
		language = domain.LangEN
	}
	meanings := item.MeaningsIn(language)
	if len(meanings) == 0 {
		meanings = item.MeaningsIn(domain.LangEN)
	}
	fmt.Printf("Meaning: %s\n", strings.Join(meanings, "; "))
}

func isQuit(input string) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "q" || input == "quit"
}

func parseLevelKind(level, kind string) (*string, *string, error) {
	var levelPtr, kindPtr *string
	if level != "" {
		parsed, err := domain.ParseJLPTLevel(level)
		if err != nil {
			return nil, nil, err
		}
		s := string(parsed)
		levelPtr = &s
	}
	if kind != "" {
		parsed, err := domain.ParseItemKind(kind)
		if err != nil {
			return nil, nil, err
		}
		s := string(parsed)
		kindPtr = &s
	}
	return levelPtr, kindPtr, nil
}
