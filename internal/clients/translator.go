/**
 * Markdown translator
 *
 * Drives the provider's OpenAI-compatible chat endpoint. Large documents
 * arrive pre-chunked; chunks are translated in order and rejoined so the
 * output keeps the source's block structure.
 */

package clients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const translateSystemPrompt = "You are a professional translator. Translate the user's markdown into %s. " +
	"Preserve the markdown structure exactly: headings, lists, tables, code fences, " +
	"image references and links must keep their syntax and targets. Translate prose, " +
	"headings and table cells only. Output nothing but the translated markdown."

// TranslateUsage accumulates token usage across chunk requests
type TranslateUsage struct {
	PromptTokens     int
	CompletionTokens int
}

// Translator handles markdown translation through the chat API
type Translator struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// NewTranslator creates a translator against the given API base URL. The
// chat endpoint lives under /v1 like the rest of the API.
func NewTranslator(baseURL, apiKey, model string, logger zerolog.Logger) *Translator {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	return &Translator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger.With().Str("component", "translator").Logger(),
	}
}

// TranslateChunk translates a single markdown chunk
func (t *Translator) TranslateChunk(ctx context.Context, markdown, targetLang string) (string, *TranslateUsage, error) {
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       t.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(translateSystemPrompt, targetLang)},
			{Role: openai.ChatMessageRoleUser, Content: markdown},
		},
	})
	if err != nil {
		return "", nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("chat completion returned no choices")
	}

	usage := &TranslateUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	return resp.Choices[0].Message.Content, usage, nil
}

// Translate translates pre-split chunks in order and rejoins them. A chunk
// failure aborts the whole document; partial translations are never returned.
func (t *Translator) Translate(ctx context.Context, chunks []string, targetLang string) (string, *TranslateUsage, error) {
	if len(chunks) == 0 {
		return "", nil, fmt.Errorf("nothing to translate")
	}

	start := time.Now()
	total := &TranslateUsage{}
	translated := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		t.logger.Debug().
			Int("chunk", i+1).
			Int("chunks", len(chunks)).
			Int("chars", len(chunk)).
			Msg("translating chunk")

		out, usage, err := t.TranslateChunk(ctx, chunk, targetLang)
		if err != nil {
			return "", nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		total.PromptTokens += usage.PromptTokens
		total.CompletionTokens += usage.CompletionTokens
		translated = append(translated, strings.TrimRight(out, "\n"))
	}

	t.logger.Info().
		Int("chunks", len(chunks)).
		Int("prompt_tokens", total.PromptTokens).
		Int("completion_tokens", total.CompletionTokens).
		Dur("duration", time.Since(start)).
		Msg("translation complete")

	return strings.Join(translated, "\n\n"), total, nil
}
