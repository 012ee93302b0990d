package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizcraft/internal/app"
	"github.com/abhisek/quizcraft/internal/envutil"
	"github.com/abhisek/quizcraft/internal/logger"
	"github.com/abhisek/quizcraft/internal/store"
)

var log = logger.Nop()

var rootCmd = &cobra.Command{
	Use:           "quizcraft",
	Short:         "Turn notes and documents into quizzes",
	Long:          "quizcraft builds a short quiz from a text or document and plays it in the terminal, grading code answers in a remote sandbox.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		l, err := logger.New(envutil.String("QUIZCRAFT_LOG_MODE", "cli"))
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZCRAFT_DB env var)")
	rootCmd.PersistentFlags().String("learner", "", "Learner id (overrides QUIZCRAFT_LEARNER env var)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then QUIZCRAFT_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// resolveLearner returns --learner, then QUIZCRAFT_LEARNER, then "default".
func resolveLearner(cmd *cobra.Command) string {
	if l, _ := cmd.Flags().GetString("learner"); l != "" {
		return l
	}
	return envutil.String("QUIZCRAFT_LEARNER", "default")
}

// openStore opens the database for commands that only read or write
// stored records.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// openApp wires the full service graph.
func openApp(cmd *cobra.Command, opts app.Options) (*app.App, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	opts.DBPath = dbPath
	opts.Log = log
	return app.New(cmd.Context(), opts)
}
