package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ocrmd/ocrmd/internal/clients"
	"github.com/ocrmd/ocrmd/internal/cost"
	apperrors "github.com/ocrmd/ocrmd/internal/errors"
	"github.com/ocrmd/ocrmd/internal/markdown"
	"github.com/ocrmd/ocrmd/internal/output"
)

// TranslateBackend is the slice of the chat client the pipeline consumes
type TranslateBackend interface {
	Translate(ctx context.Context, chunks []string, targetLang string) (string, *clients.TranslateUsage, error)
}

// TranslateOptions configure a TranslateProcessor
type TranslateOptions struct {
	TargetLang  string
	OutputDir   string // empty means next to the input
	ChunkTokens int
}

// TranslateResult reports one translated document
type TranslateResult struct {
	Input            string        `json:"source"`
	OutputPath       string        `json:"output"`
	TargetLang       string        `json:"target_language"`
	Chunks           int           `json:"chunks"`
	PromptTokens     int           `json:"prompt_tokens"`
	CompletionTokens int           `json:"completion_tokens"`
	Duration         time.Duration `json:"duration_ms"`
}

// TranslateProcessor runs the translation pipeline for single markdown files
type TranslateProcessor struct {
	client TranslateBackend
	opts   TranslateOptions
	logger zerolog.Logger
}

// NewTranslateProcessor creates a TranslateProcessor
func NewTranslateProcessor(client TranslateBackend, opts TranslateOptions, logger zerolog.Logger) *TranslateProcessor {
	return &TranslateProcessor{
		client: client,
		opts:   opts,
		logger: logger.With().Str("component", "translate").Logger(),
	}
}

// Process translates one markdown file and writes
// <basename>.<lang>.md alongside it (or into the output directory)
func (p *TranslateProcessor) Process(ctx context.Context, input string) (*TranslateResult, error) {
	start := time.Now()
	logger := p.logger.With().Str("input", input).Logger()

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", input, err)
	}
	source := strings.TrimSpace(string(data))
	if source == "" {
		return nil, fmt.Errorf("%s is empty, nothing to translate", input)
	}

	chunks := markdown.Split(source, p.opts.ChunkTokens, cost.CountTokens)
	logger.Debug().Int("chunks", len(chunks)).Msg("source split")

	translated, usage, err := p.client.Translate(ctx, chunks, p.opts.TargetLang)
	if err != nil {
		return nil, apperrors.NewTranslateFailedError(input, p.opts.TargetLang, err)
	}

	outPath := p.outputPath(input)
	if err := output.WriteMarkdown(outPath, translated); err != nil {
		return nil, err
	}

	result := &TranslateResult{
		Input:      input,
		OutputPath: outPath,
		TargetLang: p.opts.TargetLang,
		Chunks:     len(chunks),
		Duration:   time.Since(start),
	}
	if usage != nil {
		result.PromptTokens = usage.PromptTokens
		result.CompletionTokens = usage.CompletionTokens
	}

	logger.Info().
		Str("output", outPath).
		Int("chunks", result.Chunks).
		Int("prompt_tokens", result.PromptTokens).
		Dur("duration", result.Duration).
		Msg("translation written")

	return result, nil
}

// outputPath names the translated file <basename>.<lang>.md, using a
// lowercased language tag
func (p *TranslateProcessor) outputPath(input string) string {
	dir := p.opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	lang := strings.ToLower(strings.ReplaceAll(p.opts.TargetLang, " ", "-"))
	return filepath.Join(dir, output.Basename(input)+"."+lang+".md")
}
