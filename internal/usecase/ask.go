package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/jsonc"

	"ragctx/internal/adapter/prompt"
	"ragctx/internal/domain"
	"ragctx/internal/port"
)

// RepairPrompt asks the model to resend its previous answer as plain JSON.
const RepairPrompt = `Your previous response was NOT valid JSON.
Return ONLY valid JSON, no markdown fences, no extra text.
Follow the required JSON schema strictly.`

const (
	DefaultTemperature = 0.2
	repairTemperature  = 0.0
)

// AskResult is the outcome of one ask run.
type AskResult struct {
	domain.RetrievalResult
	Prompt string
	Answer string
	// Repaired is set when the answer came from the repair round trip.
	Repaired bool
	// Raw is set when no valid JSON could be obtained and Answer is the
	// model's last reply verbatim.
	Raw bool
}

// AskUseCase retrieves context for a task and asks the LLM for a JSON answer.
type AskUseCase struct {
	retrieve    *RetrieveUseCase
	llm         port.LLM
	temperature float64
	log         zerolog.Logger
}

// NewAskUseCase creates an ask use case that sends the first request at
// the given temperature.
func NewAskUseCase(retrieve *RetrieveUseCase, llm port.LLM, temperature float64, log zerolog.Logger) *AskUseCase {
	return &AskUseCase{
		retrieve:    retrieve,
		llm:         llm,
		temperature: temperature,
		log:         log,
	}
}

// Ask runs retrieval, builds the prompt and queries the model, retrying
// once with a repair instruction when the reply is not JSON.
func (u *AskUseCase) Ask(ctx context.Context, root string, files []string, task string, topK int) (*AskResult, error) {
	res := u.retrieve.Retrieve(root, files, task, topK)

	text, err := prompt.Build(task, res.Hits, res.Context)
	if err != nil {
		return nil, err
	}
	result := &AskResult{RetrievalResult: res, Prompt: text}

	conversation := []domain.ChatMessage{{Role: "user", Content: text}}
	reply, err := u.llm.Chat(ctx, conversation, u.temperature)
	if err != nil {
		return nil, fmt.Errorf("llm call failed: %w", err)
	}

	if out, ok := FormatJSON(reply); ok {
		result.Answer = out
		return result, nil
	}

	u.log.Warn().Int("chars", len(reply)).Msg("LLM reply is not valid JSON, asking for a repair")

	conversation = append(conversation,
		domain.ChatMessage{Role: "assistant", Content: reply},
		domain.ChatMessage{Role: "user", Content: RepairPrompt},
	)
	retry, err := u.llm.Chat(ctx, conversation, repairTemperature)
	if err != nil {
		return nil, fmt.Errorf("llm repair call failed: %w", err)
	}

	result.Repaired = true
	if out, ok := FormatJSON(retry); ok {
		result.Answer = out
		return result, nil
	}

	u.log.Warn().Msg("LLM repair reply is still not JSON, returning it verbatim")
	result.Answer = retry
	result.Raw = true
	return result, nil
}

// FormatJSON re-indents s with two spaces. Replies wrapped in prose or
// markdown fences, or carrying comments and trailing commas, are accepted
// when their outermost object is otherwise valid.
func FormatJSON(s string) (string, bool) {
	data := []byte(strings.TrimSpace(s))
	if !json.Valid(data) {
		data = jsonc.ToJSON([]byte(extractJSON(s)))
		if !json.Valid(data) {
			return "", false
		}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(data), "", "  "); err != nil {
		return "", false
	}
	return buf.String(), true
}

func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
