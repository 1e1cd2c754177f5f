/**
 * Batch dispatch
 *
 * Expands CLI arguments into a worklist and runs it through a bounded
 * worker pool. Documents are independent: one failure never stops the
 * rest, and the caller gets every outcome back in input order.
 */

package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ExpandInputs turns CLI arguments into the list of documents to process.
// URLs and explicitly named files pass through as-is; directories expand to
// the supported files they contain, one level deep unless recursive. The
// expansion order is deterministic: arguments in given order, directory
// contents sorted.
func ExpandInputs(args []string, recursive bool) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		if IsURL(arg) {
			inputs = append(inputs, arg)
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			inputs = append(inputs, arg)
			continue
		}

		found, err := expandDir(arg, recursive)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, found...)
	}
	return inputs, nil
}

func expandDir(dir string, recursive bool) ([]string, error) {
	var found []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if HasSupportedExtension(d.Name()) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(found)
	return found, nil
}

// Outcome is one batch entry's result: exactly one of Result or Err is set.
// The type parameter lets OCR and translation batches carry their own
// result shapes through the same pool.
type Outcome[T any] struct {
	Input  string
	Result *T
	Err    error
}

// Failed reports whether the entry failed
func (o Outcome[T]) Failed() bool {
	return o.Err != nil
}

// RunBatch processes every input through fn with at most concurrency
// documents in flight, each under its own timeout. Outcomes come back
// indexed like inputs. Reconciliation holds no shared state across
// documents, so parallel runs only need distinct inputs, which distinct
// paths guarantee.
func RunBatch[T any](ctx context.Context, inputs []string, concurrency int, timeout time.Duration,
	logger zerolog.Logger, fn func(context.Context, string) (*T, error)) []Outcome[T] {

	if concurrency < 1 {
		concurrency = 1
	}

	outcomes := make([]Outcome[T], len(inputs))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, input := range inputs {
		wg.Add(1)
		go func(i int, input string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			docCtx := ctx
			var cancel context.CancelFunc
			if timeout > 0 {
				docCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			result, err := fn(docCtx, input)
			if err != nil {
				logger.Error().Str("input", input).Err(err).Msg("document failed")
			}
			outcomes[i] = Outcome[T]{Input: input, Result: result, Err: err}
		}(i, input)
	}
	wg.Wait()

	return outcomes
}

// Summarize counts a batch's outcomes
func Summarize[T any](outcomes []Outcome[T]) (succeeded, failed int) {
	for _, o := range outcomes {
		if o.Failed() {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}
