package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ocrmd/ocrmd/internal/clients"
	apperrors "github.com/ocrmd/ocrmd/internal/errors"
	"github.com/ocrmd/ocrmd/internal/logging"
)

type fakeTranslator struct {
	lastChunks []string
	lastLang   string
	output     string
	err        error
}

func (f *fakeTranslator) Translate(_ context.Context, chunks []string, lang string) (string, *clients.TranslateUsage, error) {
	f.lastChunks = chunks
	f.lastLang = lang
	if f.err != nil {
		return "", nil, f.err
	}
	return f.output, &clients.TranslateUsage{PromptTokens: 10, CompletionTokens: 12}, nil
}

func TestTranslateProcessWritesTranslatedFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(input, []byte("# Hello\n\nSome text."), 0o644); err != nil {
		t.Fatal(err)
	}

	backend := &fakeTranslator{output: "# Hallo\n\nEtwas Text."}
	p := NewTranslateProcessor(backend, TranslateOptions{TargetLang: "German", ChunkTokens: 1000}, logging.Nop())

	result, err := p.Process(context.Background(), input)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	wantOut := filepath.Join(dir, "notes.german.md")
	if result.OutputPath != wantOut {
		t.Errorf("output = %q, want %q", result.OutputPath, wantOut)
	}
	data, err := os.ReadFile(wantOut)
	if err != nil {
		t.Fatalf("translated file not written: %v", err)
	}
	if string(data) != backend.output {
		t.Errorf("content = %q", string(data))
	}
	if backend.lastLang != "German" {
		t.Errorf("target language = %q", backend.lastLang)
	}
	if result.PromptTokens != 10 || result.CompletionTokens != 12 {
		t.Errorf("usage = %+v", result)
	}
	if strings.Join(backend.lastChunks, "\n\n") != "# Hello\n\nSome text." {
		t.Errorf("chunks = %v", backend.lastChunks)
	}
}

func TestTranslateProcessEmptyFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "empty.md")
	if err := os.WriteFile(input, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewTranslateProcessor(&fakeTranslator{}, TranslateOptions{TargetLang: "fr", ChunkTokens: 100}, logging.Nop())
	if _, err := p.Process(context.Background(), input); err == nil {
		t.Error("expected an error for an empty source")
	}
}

func TestTranslateProcessWrapsBackendFailure(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(input, []byte("body"), 0o644); err != nil {
		t.Fatal(err)
	}

	backend := &fakeTranslator{err: errors.New("quota exceeded")}
	p := NewTranslateProcessor(backend, TranslateOptions{TargetLang: "es", ChunkTokens: 100}, logging.Nop())

	_, err := p.Process(context.Background(), input)
	if !apperrors.HasCode(err, apperrors.ErrorTranslateFailed) {
		t.Errorf("err = %v, want TRANSLATE_FAILED", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "doc.es.md")); !os.IsNotExist(statErr) {
		t.Error("failed translation must not write output")
	}
}
