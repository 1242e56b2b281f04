package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ragctx/config"
	"ragctx/internal/logger"
)

var (
	cfgFile   string
	cfg       *config.Config
	rootDir   string
	logLevel  string
	noHistory bool
	log       zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ragctx",
	Short: "BM25 retrieval and context budgeting for LLM prompts",
	Long: `ragctx scans a project directory, splits files into overlapping chunks,
ranks them against a query with BM25 and packs the best chunks into a
character-bounded context for an LLM.

Nothing is persisted: the index is rebuilt for every command.

Example usage:
  ragctx search -q "session token"      # Rank chunks
  ragctx context -q "session token"     # Print the packed context
  ragctx ask . "add a logout endpoint"  # Ask the LLM for a JSON answer`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if rootDir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			rootDir = wd
		}
		return useRoot(rootDir)
	},
}

// useRoot resolves dir and loads the configuration that applies to it.
func useRoot(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	rootDir = abs

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadFromDir(rootDir)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log = logger.New(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})
	return nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ragctx.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "do not record this run in the history")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
