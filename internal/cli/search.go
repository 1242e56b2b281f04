package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ragctx/internal/usecase"
)

var (
	searchText string
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Rank chunks against a query",
	Long: `Scan the root directory, build a BM25 index and print the best chunks.

Examples:
  ragctx search -q "authentication handler"
  ragctx search -q "database connection" --top-k 10 --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchText, "query", "q", "", "search query (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	files, err := scanRoot()
	if err != nil {
		return err
	}

	res := newRetrieveUseCase(cfg).Retrieve(rootDir, files, searchText, resolveTopK(searchTopK))
	recordRun("search", searchText, res.Hits, "")

	out := cmd.OutOrStdout()
	if searchJSON {
		output, err := json.MarshalIndent(res.Hits, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	if len(res.Hits) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	fmt.Fprintf(out, "Found %d results for: %s\n\n", len(res.Hits), searchText)
	for i, h := range res.Hits {
		fmt.Fprintf(out, "--- [%d] %s#%d (score: %s) ---\n", i+1, h.Path, h.ID, usecase.FormatScore(h.Score))
		text := []rune(h.Text)
		if len(text) > 500 {
			text = append(text[:500], []rune("...")...)
		}
		fmt.Fprintln(out, string(text))
		fmt.Fprintln(out)
	}
	return nil
}
