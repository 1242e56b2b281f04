// Package prompt renders the LLM prompt for a task from retrieved chunks.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"ragctx/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Mode selects the prompt template.
type Mode string

const (
	ModeSummary Mode = "summary"
	ModeAgent   Mode = "agent"
)

var summaryPattern = regexp.MustCompile(`(?i)总结|summarize|summary`)

var templates = template.Must(
	template.New("prompt").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.tmpl"),
)

// Data is the template input.
type Data struct {
	Task    string
	Hits    []domain.Hit
	Context string
}

// DetectMode picks summary mode for summarization requests and the
// coding-agent mode for everything else.
func DetectMode(task string) Mode {
	if summaryPattern.MatchString(task) {
		return ModeSummary
	}
	return ModeAgent
}

// Build renders the prompt for task.
func Build(task string, hits []domain.Hit, context string) (string, error) {
	return BuildMode(DetectMode(task), task, hits, context)
}

// BuildMode renders the prompt with an explicit mode.
func BuildMode(mode Mode, task string, hits []domain.Hit, context string) (string, error) {
	name := string(mode) + ".tmpl"
	if templates.Lookup(name) == nil {
		return "", fmt.Errorf("unknown prompt mode %q", mode)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, Data{Task: task, Hits: hits, Context: context}); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"hitList":  HitList,
		"fileList": FileList,
	}
}

// HitList renders one "N.path#id(score=s)" line per hit, or "(none)".
func HitList(hits []domain.Hit) string {
	if len(hits) == 0 {
		return "(none)"
	}
	lines := make([]string, len(hits))
	for i, h := range hits {
		lines[i] = fmt.Sprintf("%d.%s#%d(score=%s)", i+1, h.Path, h.ID, strconv.FormatFloat(h.Score, 'f', -1, 64))
	}
	return strings.Join(lines, "\n")
}

// FileList renders the distinct hit paths in first-seen order.
func FileList(hits []domain.Hit) string {
	seen := make(map[string]struct{}, len(hits))
	var lines []string
	for _, h := range hits {
		if _, ok := seen[h.Path]; ok {
			continue
		}
		seen[h.Path] = struct{}{}
		lines = append(lines, "- "+h.Path)
	}
	if len(lines) == 0 {
		return "- (none)"
	}
	return strings.Join(lines, "\n")
}
