/**
 * Pre-flight cost estimation
 *
 * Everything here is a projection shown to the user before any API call:
 * page counts come from a raw scan of PDF bytes, token counts from the
 * cl100k tokenizer. The API's own usage_info is the billing truth.
 */

package cost

import (
	"bytes"
	"fmt"
)

// Published per-unit prices, in USD
const (
	ocrPerThousandPages  = 1.0
	chatInputPerMTokens  = 0.2
	chatOutputPerMTokens = 0.6
)

// Estimate is a pre-flight cost projection
type Estimate struct {
	Documents    int
	Pages        int
	InputTokens  int
	OutputTokens int
	USD          float64
}

// Add merges another estimate into this one
func (e *Estimate) Add(other Estimate) {
	e.Documents += other.Documents
	e.Pages += other.Pages
	e.InputTokens += other.InputTokens
	e.OutputTokens += other.OutputTokens
	e.USD += other.USD
}

// String renders the estimate for the confirmation prompt
func (e Estimate) String() string {
	if e.InputTokens > 0 {
		return fmt.Sprintf("Estimated: %d document(s), ~%d input tokens, ~$%.4f",
			e.Documents, e.InputTokens, e.USD)
	}
	return fmt.Sprintf("Estimated: %d document(s), ~%d page(s), ~$%.4f",
		e.Documents, e.Pages, e.USD)
}

// EstimateOCR projects the page count and price for one document. Unknown
// content (URLs, unreadable files) counts as a single page.
func EstimateOCR(data []byte, mimeType string) Estimate {
	pages := 1
	if mimeType == "application/pdf" {
		if n := CountPDFPages(data); n > 0 {
			pages = n
		}
	}
	return Estimate{
		Documents: 1,
		Pages:     pages,
		USD:       float64(pages) / 1000 * ocrPerThousandPages,
	}
}

// EstimateTranslation projects token usage and price for one markdown
// source. Output is assumed to run roughly 1:1 with input.
func EstimateTranslation(text string) Estimate {
	in := CountTokens(text)
	out := in
	return Estimate{
		Documents:    1,
		InputTokens:  in,
		OutputTokens: out,
		USD:          float64(in)/1e6*chatInputPerMTokens + float64(out)/1e6*chatOutputPerMTokens,
	}
}

// CountPDFPages counts page objects in raw PDF bytes. Page tree nodes
// (/Type /Pages) contain the page prefix and are subtracted back out.
// Returns 0 when the scan finds nothing usable.
func CountPDFPages(data []byte) int {
	if len(data) == 0 {
		return 0
	}

	n := bytes.Count(data, []byte("/Type /Page")) - bytes.Count(data, []byte("/Type /Pages"))
	n += bytes.Count(data, []byte("/Type/Page")) - bytes.Count(data, []byte("/Type/Pages"))

	if n < 0 {
		return 0
	}
	return n
}
