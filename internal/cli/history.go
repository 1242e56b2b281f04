package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragctx/config"
	"ragctx/internal/domain"
	"ragctx/internal/usecase"
)

var (
	historyLimit int
	historyClear bool
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or clear recorded runs",
	Long: `Show the most recent search, context and ask runs recorded under
.ragctx/history.db in the root directory.

Examples:
  ragctx history
  ragctx history --limit 5 --json
  ragctx history --clear`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "number of runs to show (default from config)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete all recorded runs")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	dbPath := config.HistoryDBPath(rootDir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		if historyJSON {
			fmt.Fprintln(out, "[]")
		} else {
			fmt.Fprintln(out, "No history recorded.")
		}
		return nil
	}

	st, err := openHistory(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer st.Close()

	if historyClear {
		if err := st.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Fprintln(out, "History cleared.")
		return nil
	}

	limit := historyLimit
	if limit <= 0 {
		limit = cfg.History.Limit
	}
	runs, err := st.List(limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if historyJSON {
		output, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No history recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintln(out, formatRun(r))
	}
	return nil
}

func formatRun(r domain.Run) string {
	hits := make([]domain.Hit, len(r.Hits))
	for i, h := range r.Hits {
		hits[i] = domain.Hit{ID: h.ID, Path: h.Path, Score: h.Score}
	}
	return fmt.Sprintf("#%d %s %-7s %q -> %s",
		r.ID, r.Time.Local().Format("2006-01-02 15:04:05"), r.Command, r.Query, usecase.FormatHitSummary(hits))
}
