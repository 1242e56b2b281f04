package cli

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"ragctx/config"
	"ragctx/internal/adapter/analyzer"
	"ragctx/internal/adapter/chunker"
	"ragctx/internal/adapter/fs"
	"ragctx/internal/adapter/retriever"
	"ragctx/internal/adapter/store"
	"ragctx/internal/domain"
	"ragctx/internal/port"
	"ragctx/internal/usecase"
)

func newWalker(c *config.Config) port.FileWalker {
	return fs.NewWalker(
		fs.WithExtensions(c.Index.Extensions),
		fs.WithIgnoreDirs(c.Index.IgnoreDirs),
		fs.WithPatterns(c.Index.Includes, c.Index.Excludes),
	)
}

func fallbackPolicy(name string) retriever.Fallback {
	if name == config.FallbackNone {
		return retriever.FallbackNone
	}
	return retriever.FallbackRawTopK
}

func newRetrieveUseCase(c *config.Config) *usecase.RetrieveUseCase {
	indexer := usecase.NewIndexer(
		chunker.NewWindowChunker(c.Index.ChunkSize, c.Index.ChunkOverlap),
		usecase.WithWorkers(c.Index.ReadWorkers),
		usecase.WithLogger(log),
		usecase.WithProgress(newProgress()),
	)

	return usecase.NewRetrieveUseCase(
		indexer,
		analyzer.NewTokenizer(c.StopWordSet()),
		usecase.RetrieveOptions{
			Params:   retriever.Params{K1: c.Retrieve.K1, B: c.Retrieve.B},
			Fallback: fallbackPolicy(c.Retrieve.Fallback),
			MaxChars: c.MaxContextChars(),
		},
		log,
	)
}

// scanRoot lists the files to index under the current root.
func scanRoot() ([]string, error) {
	files, err := newWalker(cfg).Walk(rootDir)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("root", rootDir).Int("files", len(files)).Msg("scanned files")
	return files, nil
}

func resolveTopK(flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return cfg.Retrieve.TopK
}

// newProgress returns a progress callback drawing a bar on stderr, or nil
// when stderr is not a terminal.
func newProgress() usecase.ProgressFunc {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}

	var (
		bar       *progressbar.ProgressBar
		barMu     sync.Mutex
		startTime time.Time
	)

	return func(processed, total int, _ string) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
				progressbar.OptionSetDescription("[cyan]Reading[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
			)
		}

		_ = bar.Set(processed)

		elapsed := time.Since(startTime)
		if rate := float64(processed) / elapsed.Seconds(); rate > 0 {
			eta := time.Duration(float64(total-processed)/rate) * time.Second
			bar.Describe(fmt.Sprintf("[cyan]Reading[reset] ETA: %s", formatDuration(eta)))
		}
	}
}

var openHistory = func(path string) (port.HistoryStore, error) {
	return store.OpenHistory(path)
}

// recordRun appends a run to the history database. Failures are logged
// and never fail the command.
func recordRun(command, query string, hits []domain.Hit, answer string) {
	if noHistory || !cfg.History.Enabled {
		return
	}

	if err := config.EnsureDataDir(rootDir); err != nil {
		log.Warn().Err(err).Msg("cannot create data directory, run not recorded")
		return
	}
	st, err := openHistory(config.HistoryDBPath(rootDir))
	if err != nil {
		log.Warn().Err(err).Msg("cannot open history, run not recorded")
		return
	}
	defer st.Close()

	run := &domain.Run{
		Command: command,
		Root:    rootDir,
		Query:   query,
		Hits:    domain.Refs(hits),
		Answer:  answer,
	}
	if err := st.Record(run); err != nil {
		log.Warn().Err(err).Msg("failed to record run")
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
