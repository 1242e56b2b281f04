package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	contextText     string
	contextTopK     int
	contextMaxChars int
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print the packed context for a query",
	Long: `Retrieve the best chunks for a query and print them as one
character-bounded context blob, ready to paste into a prompt.

Examples:
  ragctx context -q "how does auth work"
  ragctx context -q "cache eviction" --max-chars 2000`,
	RunE: runContext,
}

func init() {
	rootCmd.AddCommand(contextCmd)
	contextCmd.Flags().StringVarP(&contextText, "query", "q", "", "query (required)")
	contextCmd.Flags().IntVarP(&contextTopK, "top-k", "k", 0, "number of chunks (default from config)")
	contextCmd.Flags().IntVar(&contextMaxChars, "max-chars", 0, "context budget in characters (default from config)")
	contextCmd.MarkFlagRequired("query")
}

func runContext(cmd *cobra.Command, args []string) error {
	if contextMaxChars > 0 {
		cfg.Context.MaxChars = contextMaxChars
	}

	files, err := scanRoot()
	if err != nil {
		return err
	}

	res := newRetrieveUseCase(cfg).Retrieve(rootDir, files, contextText, resolveTopK(contextTopK))
	recordRun("context", contextText, res.Hits, "")

	fmt.Fprint(cmd.OutOrStdout(), res.Context)
	return nil
}
