package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"ragctx/config"
	"ragctx/internal/adapter/analyzer"
	"ragctx/internal/adapter/chunker"
	"ragctx/internal/adapter/fs"
	"ragctx/internal/adapter/retriever"
	"ragctx/internal/domain"
	"ragctx/internal/usecase"
)

type snapshot struct {
	Files        int
	Documents    int
	Hits         []domain.Hit
	ContextChars int
}

func main() {
	root := flag.String("dir", ".", "Directory to scan")
	query := flag.String("q", "", "Query to test")
	topK := flag.Int("k", 8, "Number of results")
	runs := flag.Int("n", 5, "Number of timed runs")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run ./cmd/benchmark -dir ./project -q \"query\" [-k 8] [-n 5]")
		fmt.Println("\nMeasures, per run:")
		fmt.Println("  1. Directory scan")
		fmt.Println("  2. File reads and chunking")
		fmt.Println("  3. BM25 index build and search")
		fmt.Println("  4. Context assembly")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*root)
	if err == nil {
		err = cfg.ApplyEnv(os.LookupEnv)
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	walker := fs.NewWalker(
		fs.WithExtensions(cfg.Index.Extensions),
		fs.WithIgnoreDirs(cfg.Index.IgnoreDirs),
		fs.WithPatterns(cfg.Index.Includes, cfg.Index.Excludes),
	)
	indexer := usecase.NewIndexer(
		chunker.NewWindowChunker(cfg.Index.ChunkSize, cfg.Index.ChunkOverlap),
		usecase.WithWorkers(cfg.Index.ReadWorkers),
	)
	tokenizer := analyzer.NewTokenizer(cfg.StopWordSet())
	params := retriever.Params{K1: cfg.Retrieve.K1, B: cfg.Retrieve.B}

	fmt.Println("BM25 RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Root:   %s\n", *root)
	fmt.Printf("Query:  \"%s\"\n", *query)
	fmt.Printf("Chunks: size=%d overlap=%d, k1=%.2f b=%.2f\n", cfg.Index.ChunkSize, cfg.Index.ChunkOverlap, params.K1, params.B)
	fmt.Println(strings.Repeat("-", 70))

	var scanT, readT, searchT, packT []time.Duration
	var last snapshot

	for i := 0; i < *runs; i++ {
		start := time.Now()
		files, err := walker.Walk(*root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Scan error: %v\n", err)
			os.Exit(1)
		}
		scanT = append(scanT, time.Since(start))

		start = time.Now()
		docs := indexer.Index(*root, files)
		readT = append(readT, time.Since(start))

		start = time.Now()
		ix := retriever.Build(docs, tokenizer, retriever.WithParams(params))
		hits := ix.Search(*query, *topK)
		searchT = append(searchT, time.Since(start))

		start = time.Now()
		packed := usecase.AssembleContext(hits, cfg.MaxContextChars())
		packT = append(packT, time.Since(start))

		last = snapshot{Files: len(files), Documents: len(docs), Hits: hits, ContextChars: len([]rune(packed))}
	}

	fmt.Printf("Files: %d  Chunks: %d  Hits: %d  Context chars: %d\n\n",
		last.Files, last.Documents, len(last.Hits), last.ContextChars)

	fmt.Printf("%-10s %12s %12s %12s\n", "PHASE", "MIN", "MEDIAN", "MAX")
	printTimings("scan", scanT)
	printTimings("read", readT)
	printTimings("search", searchT)
	printTimings("pack", packT)
	fmt.Println()

	fmt.Printf("Top %d matches:\n\n", len(last.Hits))
	for i, h := range last.Hits {
		preview := []rune(strings.ReplaceAll(h.Text, "\n", " "))
		if len(preview) > 120 {
			preview = append(preview[:120], []rune("...")...)
		}
		fmt.Printf("%d. [%s] %s#%d\n", i+1, usecase.FormatScore(h.Score), h.Path, h.ID)
		fmt.Printf("   %s\n\n", string(preview))
	}
}

func printTimings(name string, ds []time.Duration) {
	if len(ds) == 0 {
		return
	}
	sorted := append([]time.Duration(nil), ds...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	fmt.Printf("%-10s %12s %12s %12s\n", name, sorted[0], sorted[len(sorted)/2], sorted[len(sorted)-1])
}
