package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ragctx/internal/adapter/llm"
	"ragctx/internal/usecase"
)

var askTopK int

var askCmd = &cobra.Command{
	Use:   "ask <project_dir> <task...>",
	Short: "Retrieve context and ask the LLM for a JSON answer",
	Long: `Retrieve the chunks relevant to a task, build the prompt and send it to an
OpenAI-compatible chat completion endpoint. The JSON reply is printed with
two-space indentation; a reply that is still not JSON after one repair
round trip is printed verbatim.

Environment:
  LLM_API_KEY    API key (required; name configurable as llm.api_key_env)
  LLM_BASE_URL   endpoint base URL
  LLM_MODEL      model name

Examples:
  ragctx ask . "summarize this project"
  ragctx ask ./web add a logout button to the header`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks (default from config)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := useRoot(args[0]); err != nil {
		return err
	}
	task := strings.Join(args[1:], " ")

	client, err := llm.NewClient(llm.Options{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		APIKey:  os.Getenv(cfg.LLM.APIKeyEnv),
		Timeout: time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("%w: set %s", err, cfg.LLM.APIKeyEnv)
	}

	files, err := scanRoot()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	askUC := usecase.NewAskUseCase(newRetrieveUseCase(cfg), client, cfg.LLM.Temperature, log)
	res, err := askUC.Ask(ctx, rootDir, files, task, resolveTopK(askTopK))
	if err != nil {
		return err
	}
	recordRun("ask", task, res.Hits, res.Answer)

	fmt.Fprintln(cmd.OutOrStdout(), res.Answer)
	return nil
}
