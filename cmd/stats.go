package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizcraft/internal/app"
	"github.com/abhisek/quizcraft/internal/store"
	"github.com/abhisek/quizcraft/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the learner's points, completed content and recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := openApp(cmd, app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		learner := resolveLearner(cmd)

		points := 0
		p, err := a.Store.ProfileRepo().GetProfile(ctx, learner)
		switch {
		case err == nil:
			points = p.Points
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		fmt.Println(theme.Title.Render("Learner " + learner))
		fmt.Println(theme.Label.Render("Points") + theme.Score.Render(fmt.Sprintf("%d", points)))

		completed, err := a.Ledger.Completed(ctx, learner)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Printf("Completed content (%d)\n", len(completed))
		fmt.Println(strings.Repeat("─", 48))
		for _, c := range completed {
			fmt.Printf("%-28s  %s\n", truncate(c.ContentID, 28), c.CompletedAt.Local().Format("2006-01-02 15:04"))
		}

		events, err := a.Store.EventRepo().QuerySessionEvents(ctx, store.QueryOpts{Limit: limit * 4})
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println("Recent sessions")
		fmt.Println(strings.Repeat("─", 72))
		fmt.Printf("%-19s  %-8s  %-20s  %5s  %8s  %6s\n", "Timestamp", "Action", "Content", "Items", "Answered", "Score")
		shown := 0
		for _, e := range events {
			if e.LearnerID != learner || e.Action == store.SessionStart {
				continue
			}
			if shown == limit {
				break
			}
			shown++
			content := e.ContentID
			if content == "" {
				content = "(ad hoc)"
			}
			fmt.Printf("%-19s  %-8s  %-20s  %5d  %8d  %6d\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, truncate(content, 20),
				e.Items, e.Answered, e.Score)
		}
		if shown == 0 {
			fmt.Println("No sessions yet.")
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntP("limit", "n", 10, "Number of sessions to show")
}
