package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kaedesrs/kotoba/internal/apperr"
	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/session"
)

var (
	mcqLimit        int
	mcqLevel        string
	mcqKind         string
	mcqQuestionType string
	mcqLanguage     string
)

var mcqCmd = &cobra.Command{
	Use:   "mcq",
	Short: "Start a multiple-choice review session",
	Long: `Start an interactive multiple-choice review session: each due item is
presented with four options (one correct, three distractors drawn from the
catalog), and correctness drives the same FSRS rescheduling as review.`,
	RunE: runMCQ,
}

func init() {
	rootCmd.AddCommand(mcqCmd)
	mcqCmd.Flags().IntVar(&mcqLimit, "limit", 0, "maximum items this session (0 = use configured default)")
	mcqCmd.Flags().StringVar(&mcqLevel, "level", "", "restrict to a JLPT level (n5..n1)")
	mcqCmd.Flags().StringVar(&mcqKind, "kind", "both", "vocab, kanji, or both")
	mcqCmd.Flags().StringVar(&mcqQuestionType, "question-type", "", "w2m, m2w, or mixed (default: configured default)")
	mcqCmd.Flags().StringVar(&mcqLanguage, "language", "", "vi or en (default: configured default)")
}

func runMCQ(cmd *cobra.Command, args []string) error {
	app, err := NewApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	var kind *string
	if mcqKind != "" && mcqKind != "both" {
		parsedKind, err := domain.ParseItemKind(mcqKind)
		if err != nil {
			return err
		}
		s := string(parsedKind)
		kind = &s
	}
	level, _, err := parseLevelKind(mcqLevel, "")
	if err != nil {
		return err
	}

	qTypeStr := mcqQuestionType
	if qTypeStr == "" {
		qTypeStr = app.Config.MCQ.DefaultQuestionType
	}
	qType, err := domain.ParseQuestionType(qTypeStr)
	if err != nil {
		return err
	}

	langStr := mcqLanguage
	if langStr == "" {
		langStr = app.Config.MCQ.DefaultLanguage
	}
	lang, err := domain.ParseLanguage(langStr)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := ensureReviews(app, app.MCQ, kind, level, now); err != nil {
		return fmt.Errorf("failed to prepare reviews: %w", err)
	}

	limit := mcqLimit
	if limit <= 0 {
		limit = app.Config.Review.MaxItemsPerSession
	}

	svc := session.NewMCQService(app.MCQ, app.Generator, lang, qType)
	sess, err := svc.Start(session.Options{
		JLPTLevel: level,
		ItemKind:  kind,
		MaxItems:  limit,
		Shuffle:   app.Config.Review.Shuffle,
	}, now)
	if err != nil {
		return fmt.Errorf("failed to start mcq session: %w", err)
	}

	if sess.ItemsRemaining == 0 {
		fmt.Println("Nothing due for review right now.")
		return nil
	}
	fmt.Printf("Starting mcq session with %d item(s) due.\n", sess.ItemsRemaining)

	scanner := bufio.NewScanner(os.Stdin)
	optionLabels := []string{"A", "B", "C", "D"}
	quit := false
	for !quit {
		review, question, err := svc.Next(sess.ID)
		if err != nil {
			if strings.Contains(err.Error(), "no more reviews") {
				break
			}
			if apperr.IsUnavailable(err) {
				// spec.md §7: the generator couldn't assemble four unique
				// options; skip this item and keep the session going.
				fmt.Println("Skipping an item: not enough catalog entries to build distinct options.")
				if skipErr := svc.Skip(sess.ID); skipErr != nil {
					return fmt.Errorf("failed to skip item: %w", skipErr)
				}
				continue
			}
			return fmt.Errorf("failed to generate question: %w", err)
		}

		fmt.Println("\n" + strings.Repeat("-", 40))
		fmt.Println(question.Prompt)
		for i, opt := range question.Options {
			fmt.Printf("  %s) %s\n", optionLabels[i], opt)
		}

		var selected int
		for {
			fmt.Print("Your answer (A-D, q=quit): ")
			if !scanner.Scan() {
				quit = true
				break
			}
			input := strings.ToUpper(strings.TrimSpace(scanner.Text()))
			if isQuit(input) {
				fmt.Println("Ending session early.")
				quit = true
				break
			}
			idx := indexOf(optionLabels, input)
			if idx < 0 {
				fmt.Println("Please answer with A, B, C, D, or q.")
				continue
			}
			selected = idx
			break
		}
		if quit {
			break
		}

		if err := svc.SubmitAnswer(sess.ID, review.ID, selected, nil, time.Now()); err != nil {
			return fmt.Errorf("failed to submit answer: %w", err)
		}
		if selected == question.CorrectIndex {
			fmt.Println("Correct!")
		} else {
			fmt.Printf("Incorrect. The correct answer was %s) %s\n", optionLabels[question.CorrectIndex], question.Options[question.CorrectIndex])
		}
	}

	stats, err := svc.End(sess.ID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to finalize session: %w", err)
	}
	fmt.Printf("\nSession complete: %d item(s) answered in %v.\n", stats.ItemsReviewed, stats.Duration.Round(time.Second))
	fmt.Printf("  Correct: %d, Incorrect: %d\n", stats.CorrectCount, stats.IncorrectCount)
	return nil
}

func indexOf(labels []string, s string) int {
	for i, l := range labels {
		if l == s {
			return i
		}
	}
	return -1
}
