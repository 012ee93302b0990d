package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizcraft/internal/app"
	"github.com/abhisek/quizcraft/internal/store"
	"github.com/abhisek/quizcraft/internal/ui/theme"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage stored content",
}

var contentAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Store a text or document reference under an id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")
		url, _ := cmd.Flags().GetString("url")
		title, _ := cmd.Flags().GetString("title")

		meta := store.ContentMetadata{ID: args[0], Title: title}
		switch {
		case text != "" && file == "" && url == "":
			meta.Kind, meta.Location = store.ContentKindText, text
		case file != "" && text == "" && url == "":
			abs, err := filepath.Abs(file)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", file, err)
			}
			meta.Kind, meta.Location = store.ContentKindDocument, abs
		case url != "" && text == "" && file == "":
			meta.Kind, meta.Location = store.ContentKindDocument, url
		default:
			return errors.New("use exactly one of --text, --file or --url")
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ContentRepo().PutContent(cmd.Context(), meta); err != nil {
			return err
		}
		fmt.Printf("Stored %s (%s)\n", meta.ID, meta.Kind)
		return nil
	},
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored content and whether the learner completed it",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		items, err := a.Store.ContentRepo().ListContent(ctx)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No content stored yet.")
			return nil
		}

		learner := resolveLearner(cmd)
		fmt.Printf("%-3s  %-20s  %-8s  %s\n", "", "ID", "Kind", "Title")
		fmt.Println(strings.Repeat("─", 60))
		for _, m := range items {
			done, err := a.Ledger.IsCompleted(ctx, learner, m.ID)
			if err != nil {
				return err
			}
			badge := "   "
			if done {
				badge = theme.Correct.Render(" ✓ ")
			}
			fmt.Printf("%s  %-20s  %-8s  %s\n", badge, truncate(m.ID, 20), m.Kind, m.Title)
		}
		return nil
	},
}

var contentShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show stored content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		m, err := a.Store.ContentRepo().GetContentMetadata(ctx, args[0])
		if err != nil {
			return err
		}
		done, err := a.Ledger.IsCompleted(ctx, resolveLearner(cmd), m.ID)
		if err != nil {
			return err
		}

		fmt.Printf("ID:        %s\n", m.ID)
		fmt.Printf("Title:     %s\n", m.Title)
		fmt.Printf("Kind:      %s\n", m.Kind)
		fmt.Printf("Added:     %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Completed: %v\n", done)
		fmt.Println()
		if m.Kind == store.ContentKindText {
			fmt.Println(m.Location)
		} else {
			fmt.Println("Location: " + m.Location)
		}
		return nil
	},
}

func init() {
	contentAddCmd.Flags().String("text", "", "Raw text")
	contentAddCmd.Flags().String("file", "", "Local document path")
	contentAddCmd.Flags().String("url", "", "Document URL")
	contentAddCmd.Flags().String("title", "", "Display title")

	contentCmd.AddCommand(contentAddCmd)
	contentCmd.AddCommand(contentListCmd)
	contentCmd.AddCommand(contentShowCmd)
}
