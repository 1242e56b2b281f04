package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ragctx/internal/adapter/prompt"
)

var (
	promptTask string
	promptTopK int
	promptMode string
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the LLM prompt for a task without calling the model",
	Long: `Build the prompt that "ask" would send, for manual LLM orchestration.

Tasks mentioning summarize/summary/总结 get the summary template; anything
else gets the coding-agent template. --mode forces one.

Examples:
  ragctx prompt -q "summarize this project"
  ragctx prompt -q "add retries to the http client" --mode agent`,
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().StringVarP(&promptTask, "query", "q", "", "task description (required)")
	promptCmd.Flags().IntVarP(&promptTopK, "top-k", "k", 0, "number of chunks (default from config)")
	promptCmd.Flags().StringVar(&promptMode, "mode", "", "prompt template: summary or agent (default detected from the task)")
	promptCmd.MarkFlagRequired("query")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	mode := prompt.DetectMode(promptTask)
	if promptMode != "" {
		mode = prompt.Mode(promptMode)
	}

	files, err := scanRoot()
	if err != nil {
		return err
	}

	res := newRetrieveUseCase(cfg).Retrieve(rootDir, files, promptTask, resolveTopK(promptTopK))

	text, err := prompt.BuildMode(mode, promptTask, res.Hits, res.Context)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}
