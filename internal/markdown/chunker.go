/**
 * Markdown chunking for translation
 *
 * Splits a document into chunks that fit the chat endpoint's context budget
 * without breaking block structure. Goldmark supplies the block boundaries;
 * the chunker never cuts inside a code fence or a table, so each chunk is
 * valid markdown the model can translate in isolation.
 */

package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// TokenCounter reports the token cost of a piece of text
type TokenCounter func(string) int

// Split breaks source into chunks whose token count stays under maxTokens,
// grouping consecutive top-level blocks greedily. A single block larger than
// the budget is split on line boundaries as a last resort. Joining the
// returned chunks with a blank line reproduces the document's content in
// order.
func Split(source string, maxTokens int, count TokenCounter) []string {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil
	}
	if maxTokens <= 0 || count(source) <= maxTokens {
		return []string{source}
	}

	sepCost := count("\n\n")

	var chunks []string
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			current = nil
			currentTokens = 0
		}
	}

	for _, block := range splitBlocks(source) {
		tokens := count(block)

		if tokens > maxTokens {
			flush()
			chunks = append(chunks, splitOversized(block, maxTokens, count)...)
			continue
		}
		if currentTokens > 0 && currentTokens+sepCost+tokens > maxTokens {
			flush()
		}
		if currentTokens > 0 {
			currentTokens += sepCost
		}
		current = append(current, block)
		currentTokens += tokens
	}
	flush()

	return chunks
}

// splitBlocks returns the source text of each top-level markdown block, in
// document order. Block spans come from goldmark's parse; span starts are
// widened to line boundaries so heading markers and opening code fences stay
// with their block.
func splitBlocks(source string) []string {
	src := []byte(source)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var starts []int
	floor := 0
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		off, ok := blockStart(child)
		if !ok {
			continue
		}
		start := widenToBlockStart(src, off, floor)
		if start < floor {
			start = floor
		}
		starts = append(starts, start)
		floor = start + 1
	}
	if len(starts) == 0 {
		return []string{source}
	}

	blocks := make([]string, 0, len(starts))
	for i, start := range starts {
		end := len(src)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		block := strings.TrimSpace(string(src[start:end]))
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// blockStart finds the smallest source offset covered by a node's lines,
// descending into children for container blocks that carry no lines of
// their own
func blockStart(node ast.Node) (int, bool) {
	min := -1
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Type() != ast.TypeBlock {
			return ast.WalkContinue, nil
		}
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			if min < 0 || seg.Start < min {
				min = seg.Start
			}
		}
		return ast.WalkContinue, nil
	})
	if min < 0 {
		return 0, false
	}
	return min, true
}

// widenToBlockStart moves an offset back to the start of its line, then
// keeps absorbing preceding non-blank lines down to floor. Goldmark line
// segments exclude heading markers, list bullets and code fences; those
// always sit earlier on the same line or on adjacent non-blank lines above.
func widenToBlockStart(src []byte, off, floor int) int {
	start := lineStart(src, off)
	for start > floor {
		prev := lineStart(src, start-1)
		if isBlankLine(src, prev, start) || prev < floor {
			break
		}
		start = prev
	}
	return start
}

func lineStart(src []byte, off int) int {
	if off > len(src) {
		off = len(src)
	}
	for off > 0 && src[off-1] != '\n' {
		off--
	}
	return off
}

func isBlankLine(src []byte, start, end int) bool {
	for i := start; i < end; i++ {
		switch src[i] {
		case ' ', '\t', '\r', '\n':
		default:
			return false
		}
	}
	return true
}

// splitOversized cuts a block that alone exceeds the budget on line
// boundaries. A single line over the budget is emitted as its own chunk,
// never cut mid-line.
func splitOversized(block string, maxTokens int, count TokenCounter) []string {
	sepCost := count("\n")

	var chunks []string
	var current []string
	currentTokens := 0

	for _, line := range strings.Split(block, "\n") {
		tokens := count(line)
		if currentTokens > 0 && currentTokens+sepCost+tokens > maxTokens {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = nil
			currentTokens = 0
		}
		if currentTokens > 0 {
			currentTokens += sepCost
		}
		current = append(current, line)
		currentTokens += tokens
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}
