package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizcraft/internal/llm"
	"github.com/abhisek/quizcraft/internal/store"
	"github.com/abhisek/quizcraft/internal/ui/theme"
)

const stampLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded model calls and their cost",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query model calls: %w", err)
		}
		out := cmd.OutOrStdout()
		if purpose != "" {
			events = filterPurpose(events, purpose)
		}
		if len(events) == 0 {
			fmt.Fprintln(out, theme.Hint.Render("No model calls recorded."))
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tWHEN\tPURPOSE\tPROVIDER\tMODEL\tIN\tOUT\tMS\t")
		for _, e := range events {
			status := theme.Correct.Render("ok")
			if !e.Success {
				status = theme.Incorrect.Render("failed")
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				e.ID, e.Timestamp.Local().Format(stampLayout), e.Purpose, e.Provider,
				truncate(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, status)
		}
		return tw.Flush()
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the captured request and response of one model call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("call id must be a number, got %q", args[0])
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("load model call: %w", err)
		}
		if e == nil {
			return fmt.Errorf("no model call with id %d", id)
		}
		writeCall(cmd.OutOrStdout(), e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("usage by purpose: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, theme.Hint.Render("No model usage recorded."))
			return nil
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("usage by model: %w", err)
		}

		fmt.Fprintln(out, theme.Title.Render("Tokens by purpose"))
		if err := writePurposeUsage(out, byPurpose); err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, theme.Title.Render("Estimated cost by model (USD)"))
		return writeModelCost(out, byModel)
	},
}

func filterPurpose(events []store.LLMRequestEventRecord, purpose string) []store.LLMRequestEventRecord {
	kept := events[:0]
	for _, e := range events {
		if e.Purpose == purpose {
			kept = append(kept, e)
		}
	}
	return kept
}

func writeCall(w io.Writer, e *store.LLMRequestEventRecord) {
	field := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", theme.Label.Render(label), value)
	}
	field("id", strconv.Itoa(e.ID))
	field("when", e.Timestamp.Local().Format(stampLayout))
	field("provider", e.Provider)
	field("model", e.Model)
	field("purpose", e.Purpose)
	field("tokens", fmt.Sprintf("%d in, %d out", e.InputTokens, e.OutputTokens))
	field("latency", fmt.Sprintf("%dms", e.LatencyMs))
	if e.Success {
		field("outcome", "ok")
	} else {
		field("outcome", theme.Incorrect.Render(e.ErrorMessage))
	}

	for _, part := range []struct{ title, body string }{
		{"request", e.RequestBody},
		{"response", e.ResponseBody},
	} {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Title.Render(strings.ToUpper(part.title)))
		if part.body == "" {
			fmt.Fprintln(w, theme.Hint.Render("(not captured)"))
			continue
		}
		fmt.Fprintln(w, part.body)
	}
}

func writePurposeUsage(w io.Writer, rows []store.LLMUsage) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PURPOSE\tCALLS\tINPUT\tOUTPUT\tAVG MS\t")
	var calls, in, outTok int
	for _, u := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t\n", u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		in += u.InputTokens
		outTok += u.OutputTokens
	}
	fmt.Fprintf(tw, "total\t%d\t%d\t%d\t\t\n", calls, in, outTok)
	return tw.Flush()
}

// modelCost prices per-model usage. Models without a known price are
// returned separately and left out of the total.
func modelCost(rows []store.LLMUsage) (costs map[string]float64, total float64, unpriced []string) {
	costs = make(map[string]float64, len(rows))
	for _, u := range rows {
		price := llm.LookupCost(u.Model)
		if price == nil {
			unpriced = append(unpriced, u.Model)
			continue
		}
		c := price.Cost(u.InputTokens, u.OutputTokens)
		costs[u.Model] = c
		total += c
	}
	return costs, total, unpriced
}

func writeModelCost(w io.Writer, rows []store.LLMUsage) error {
	costs, total, unpriced := modelCost(rows)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tCALLS\tINPUT\tOUTPUT\tCOST\t")
	for _, u := range rows {
		cost := "?"
		if c, ok := costs[u.Model]; ok {
			cost = formatCost(c)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t\n", truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, cost)
	}
	label := "total"
	if len(unpriced) > 0 {
		label = "total (priced models only)"
	}
	fmt.Fprintf(tw, "%s\t\t\t\t%s\t\n", label, formatCost(total))
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(unpriced) > 0 {
		fmt.Fprintln(w, theme.Hint.Render("No price known for "+strings.Join(unpriced, ", ")))
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show calls made for this purpose")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
