/**
 * Per-document OCR pipeline
 *
 * Takes one input (local file or URL) through load, format detection,
 * document referencing, the single OCR call, reconciliation and output
 * persistence. Each step failure aborts this document only; the batch
 * layer decides what one failure means for the rest of the run.
 */

package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ocrmd/ocrmd/internal/clients"
	apperrors "github.com/ocrmd/ocrmd/internal/errors"
	"github.com/ocrmd/ocrmd/internal/output"
	"github.com/ocrmd/ocrmd/internal/reconcile"
)

// OCRBackend is the slice of the API client the pipeline consumes
type OCRBackend interface {
	Process(ctx context.Context, req *clients.OCRRequest) (*clients.OCRResponse, error)
	UploadAndSign(ctx context.Context, filename string, data []byte, expiryHours int) (string, error)
}

// Options configure a Processor
type Options struct {
	Model          string
	OutputDir      string // empty means next to the input (or cwd for URLs)
	InlineImages   bool   // embed mode: data URIs instead of image files
	WriteMetadata  bool
	MaxFileSize    int64
	URLExpiryHours int
}

// Result reports one processed document
type Result struct {
	Input         string        `json:"source"`
	OutputPath    string        `json:"output"`
	Model         string        `json:"model"`
	Pages         int           `json:"pages"`
	PagesKept     int           `json:"pages_kept"`
	ImagesWritten int           `json:"images_written"`
	ImagesFailed  int           `json:"images_failed"`
	BilledPages   int           `json:"billed_pages"`
	Duration      time.Duration `json:"duration_ms"`
}

// Processor runs the OCR pipeline for single documents
type Processor struct {
	client     OCRBackend
	reconciler *reconcile.Reconciler
	opts       Options
	logger     zerolog.Logger
}

// NewProcessor creates a Processor
func NewProcessor(client OCRBackend, opts Options, logger zerolog.Logger) *Processor {
	return &Processor{
		client:     client,
		reconciler: reconcile.New(logger),
		opts:       opts,
		logger:     logger.With().Str("component", "pipeline").Logger(),
	}
}

// IsURL reports whether an input is fetched by the API rather than read
// from disk
func IsURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// Process runs one document through the pipeline and returns what was
// written where
func (p *Processor) Process(ctx context.Context, input string) (*Result, error) {
	start := time.Now()
	logger := p.logger.With().Str("input", input).Logger()
	logger.Info().Msg("processing document")

	doc, err := p.buildDocument(ctx, input, logger)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Process(ctx, &clients.OCRRequest{
		Model:              p.opts.Model,
		Document:           *doc,
		IncludeImageBase64: true,
	})
	if err != nil {
		return nil, apperrors.NewAPICallFailedError(input, err)
	}

	mdPath := p.markdownPath(input)
	mode := reconcile.ModeLink
	if p.opts.InlineImages {
		mode = reconcile.ModeEmbed
	}

	rec, err := p.reconciler.Reconcile(toPages(resp), reconcile.Options{
		Mode:      mode,
		ImagesDir: output.ImagesDir(mdPath),
		Source:    input,
	})
	if err != nil {
		return nil, err
	}

	if err := output.WriteMarkdown(mdPath, rec.Markdown); err != nil {
		return nil, err
	}

	result := &Result{
		Input:         input,
		OutputPath:    mdPath,
		Model:         resp.Model,
		Pages:         len(resp.Pages),
		PagesKept:     rec.PagesKept,
		ImagesWritten: rec.ImagesWritten,
		ImagesFailed:  len(rec.Failures),
		BilledPages:   resp.UsageInfo.PagesProcessed,
		Duration:      time.Since(start),
	}

	if p.opts.WriteMetadata {
		if err := output.WriteMetadata(output.MetadataPath(mdPath), result); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("output", mdPath).
		Int("pages", result.Pages).
		Int("images_written", result.ImagesWritten).
		Int("images_failed", result.ImagesFailed).
		Dur("duration", result.Duration).
		Msg("document written")

	return result, nil
}

// buildDocument turns an input into the document reference the OCR endpoint
// accepts: URLs pass through, local images become data URIs, local
// PDFs/Office documents are uploaded and fetched by signed URL
func (p *Processor) buildDocument(ctx context.Context, input string, logger zerolog.Logger) (*clients.DocumentInput, error) {
	if IsURL(input) {
		if HasSupportedExtension(input) && !strings.HasSuffix(strings.ToLower(input), ".pdf") {
			return &clients.DocumentInput{Type: clients.DocumentTypeImageURL, ImageURL: input}, nil
		}
		return &clients.DocumentInput{Type: clients.DocumentTypeURL, DocumentURL: input}, nil
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", input, err)
	}
	if p.opts.MaxFileSize > 0 && int64(len(data)) > p.opts.MaxFileSize {
		return nil, apperrors.NewFileTooLargeError(input, int64(len(data)), p.opts.MaxFileSize)
	}

	mime := DetectMIME(data, input)
	if !IsSupportedMIME(mime) {
		return nil, apperrors.NewUnsupportedFormatError(input, mime)
	}
	logger.Debug().Str("mime", mime).Int64("bytes", int64(len(data))).Msg("input loaded")

	if IsImageMIME(mime) {
		uri := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
		return &clients.DocumentInput{Type: clients.DocumentTypeImageURL, ImageURL: uri}, nil
	}

	filename := output.Basename(input) + strings.ToLower(filepath.Ext(input))
	signedURL, err := p.client.UploadAndSign(ctx, filename, data, p.opts.URLExpiryHours)
	if err != nil {
		return nil, apperrors.NewUploadFailedError(input, err)
	}
	return &clients.DocumentInput{Type: clients.DocumentTypeURL, DocumentURL: signedURL}, nil
}

// markdownPath picks the output file for an input, honoring the configured
// output directory
func (p *Processor) markdownPath(input string) string {
	dir := p.opts.OutputDir
	if dir == "" {
		if IsURL(input) {
			dir = "."
		} else {
			dir = filepath.Dir(input)
		}
	}
	return output.MarkdownPath(dir, input)
}

// toPages converts wire pages into the reconciler's shape, flattening each
// page's image list into an id-keyed map
func toPages(resp *clients.OCRResponse) []reconcile.Page {
	if resp == nil {
		return nil
	}
	pages := make([]reconcile.Page, 0, len(resp.Pages))
	for _, p := range resp.Pages {
		images := make(map[string]string, len(p.Images))
		for _, img := range p.Images {
			images[img.ID] = img.ImageBase64
		}
		pages = append(pages, reconcile.Page{Markdown: p.Markdown, Images: images})
	}
	return pages
}
