/**
 * OCR response reconciliation
 *
 * Turns the per-page markdown and image payloads of an OCR response into a
 * single markdown document. Images either land on disk and get linked by
 * relative path, or are inlined as data URIs; the mode only changes which
 * resolver the rewriter runs with.
 */

package reconcile

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	apperrors "github.com/ocrmd/ocrmd/internal/errors"
)

// Mode selects how image references are resolved
type Mode int

const (
	// ModeLink writes images to disk and links them by relative path
	ModeLink Mode = iota
	// ModeEmbed inlines images as base64 data URIs
	ModeEmbed
)

func (m Mode) String() string {
	if m == ModeEmbed {
		return "embed"
	}
	return "link"
}

// Page is one page of an OCR response: its markdown plus the extracted
// images keyed by id. Ids are unique within a page.
type Page struct {
	Markdown string
	Images   map[string]string
}

// Options control a reconciliation run
type Options struct {
	Mode      Mode
	ImagesDir string // destination for materialized images, required in link mode
	Source    string // input name, only used in logs and errors
}

// ImageFailure records one skipped image
type ImageFailure struct {
	ID   string
	Page int
	Err  error
}

// Result is the outcome of reconciling one response
type Result struct {
	Markdown      string
	PagesKept     int
	ImagesWritten int
	Failures      []ImageFailure
}

// Reconciler assembles OCR pages into a single document
type Reconciler struct {
	logger zerolog.Logger
}

// New creates a Reconciler logging through the given logger
func New(logger zerolog.Logger) *Reconciler {
	return &Reconciler{logger: logger.With().Str("component", "reconcile").Logger()}
}

// Reconcile validates the page list, rewrites image references page by page
// and joins the non-empty results in page order. A response with no pages
// fails before anything touches the filesystem; per-image failures are
// collected and skipped, never fatal.
func (r *Reconciler) Reconcile(pages []Page, opts Options) (*Result, error) {
	if len(pages) == 0 {
		return nil, apperrors.NewMalformedResponseError(opts.Source)
	}
	if opts.Mode == ModeLink && opts.ImagesDir == "" {
		return nil, fmt.Errorf("images directory is required in link mode")
	}

	result := &Result{}
	rewritten := make([]string, 0, len(pages))

	for i, page := range pages {
		var md string
		switch opts.Mode {
		case ModeEmbed:
			md = Rewrite(page.Markdown, page.Images, NewEmbedResolver())
		default:
			paths, failures := r.Materialize(page.Images, opts.ImagesDir)
			for _, f := range failures {
				f.Page = i
				result.Failures = append(result.Failures, f)
			}
			result.ImagesWritten += len(paths)
			md = Rewrite(page.Markdown, page.Images, NewPathResolver(paths))
		}
		if md != "" {
			result.PagesKept++
		}
		rewritten = append(rewritten, md)
	}

	result.Markdown = Aggregate(rewritten)

	r.logger.Debug().
		Str("source", opts.Source).
		Str("mode", opts.Mode.String()).
		Int("pages", len(pages)).
		Int("pages_kept", result.PagesKept).
		Int("images_written", result.ImagesWritten).
		Int("images_failed", len(result.Failures)).
		Msg("response reconciled")

	return result, nil
}

func sortedIDs(m map[string]string) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
