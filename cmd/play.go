package cmd

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizcraft/internal/app"
	"github.com/abhisek/quizcraft/internal/extract"
	"github.com/abhisek/quizcraft/internal/screens/play"
	"github.com/abhisek/quizcraft/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Build a quiz from content and play it",
	Long: `Build a quiz from a text, a local document, a URL or stored content, then
answer it in the terminal.

Multiple-choice items take a letter or number, or the arrow keys and Enter.
Code items are typed into an editor and run with Ctrl+R. Ctrl+N skips an item
and Esc abandons the session; abandoned sessions earn no points.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().String("text", "", "Raw text to build the quiz from")
	playCmd.Flags().String("file", "", "Local document (pdf, docx, pptx, html, txt)")
	playCmd.Flags().String("url", "", "Document URL")
	playCmd.Flags().String("content", "", "Stored content id (see 'content add')")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	text, _ := cmd.Flags().GetString("text")
	file, _ := cmd.Flags().GetString("file")
	url, _ := cmd.Flags().GetString("url")
	contentID, _ := cmd.Flags().GetString("content")

	var src extract.Source
	set := 0
	if text != "" {
		src, set = extract.Text(text), set+1
	}
	if file != "" {
		src, set = extract.Document(file), set+1
	}
	if url != "" {
		src, set = extract.Document(url), set+1
	}
	if contentID != "" {
		set++
	}
	if set != 1 {
		return errors.New("use exactly one of --text, --file, --url or --content")
	}

	sched := &session.ManualScheduler{}
	a, err := openApp(cmd, app.Options{Scheduler: sched})
	if err != nil {
		return err
	}
	defer a.Close()
	if a.ProviderErr != nil {
		return fmt.Errorf("LLM provider not configured: %w", a.ProviderErr)
	}

	learner := resolveLearner(cmd)
	build := func(ctx context.Context) (*session.Session, error) {
		if contentID != "" {
			return a.Pipeline.CreateSessionForContent(ctx, learner, contentID)
		}
		return a.Pipeline.CreateSession(ctx, learner, src, "")
	}

	screen := play.New(ctx, sched, build)
	_, runErr := tea.NewProgram(screen, tea.WithContext(ctx)).Run()
	if s := screen.Session(); s != nil {
		s.Close()
	}
	if runErr != nil {
		return fmt.Errorf("run session: %w", runErr)
	}
	return screen.Err()
}
