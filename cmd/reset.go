package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizcraft/internal/app"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the learner's points and completion ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		learner := resolveLearner(cmd)

		if !yes {
			fmt.Printf("Reset all progress for %q? [y/N] ", learner)
			in := bufio.NewScanner(os.Stdin)
			if !in.Scan() || !strings.EqualFold(strings.TrimSpace(in.Text()), "y") {
				fmt.Println("Aborted.")
				return nil
			}
		}

		a, err := openApp(cmd, app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if err := a.Store.ProfileRepo().ResetProfile(ctx, learner); err != nil {
			return err
		}
		if err := a.Ledger.Reset(ctx, learner); err != nil {
			return err
		}
		fmt.Printf("Progress for %q reset.\n", learner)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
}
