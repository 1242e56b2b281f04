package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"ragctx/internal/domain"
)

var (
	statsTerms int
	statsJSON  bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics for the root directory",
	Long: `Chunk every file under the root and print document count, average
document length and the most common terms by document frequency.

Examples:
  ragctx stats
  ragctx stats --terms 50 --json`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntVar(&statsTerms, "terms", 20, "number of top terms to show")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
}

type termCount struct {
	Term string `json:"term"`
	DF   int    `json:"df"`
}

type statsReport struct {
	Files         int         `json:"files"`
	Documents     int         `json:"documents"`
	AverageLength float64     `json:"average_length"`
	Vocabulary    int         `json:"vocabulary"`
	TopTerms      []termCount `json:"top_terms"`
}

func runStats(cmd *cobra.Command, args []string) error {
	files, err := scanRoot()
	if err != nil {
		return err
	}

	uc := newRetrieveUseCase(cfg)
	docs := uc.Indexer().Index(rootDir, files)
	stats := uc.BuildIndex(docs).Stats()

	report := statsReport{
		Files:         len(files),
		Documents:     stats.DocumentCount,
		AverageLength: stats.AverageLength,
		Vocabulary:    len(stats.DocumentFrequency),
		TopTerms:      topTerms(stats, statsTerms),
	}

	out := cmd.OutOrStdout()
	if statsJSON {
		output, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	fmt.Fprintf(out, "Root:            %s\n", rootDir)
	fmt.Fprintf(out, "Files:           %d\n", report.Files)
	fmt.Fprintf(out, "Chunks:          %d\n", report.Documents)
	fmt.Fprintf(out, "Avg tokens:      %.2f\n", report.AverageLength)
	fmt.Fprintf(out, "Vocabulary:      %d\n", report.Vocabulary)
	if len(report.TopTerms) > 0 {
		fmt.Fprintf(out, "\nTop terms:\n")
		for _, t := range report.TopTerms {
			fmt.Fprintf(out, "  %-24s %d\n", t.Term, t.DF)
		}
	}
	return nil
}

// topTerms returns the n terms with the highest document frequency, ties
// broken alphabetically.
func topTerms(stats domain.CorpusStats, n int) []termCount {
	terms := make([]termCount, 0, len(stats.DocumentFrequency))
	for term, df := range stats.DocumentFrequency {
		terms = append(terms, termCount{Term: term, DF: df})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].DF != terms[j].DF {
			return terms[i].DF > terms[j].DF
		}
		return terms[i].Term < terms[j].Term
	})
	if n >= 0 && len(terms) > n {
		terms = terms[:n]
	}
	return terms
}
