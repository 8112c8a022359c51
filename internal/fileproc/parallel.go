// Package fileproc provides concurrent per-file processing utilities.
//
// Results are returned in input order regardless of scheduling, so callers
// that aggregate over them produce identical output across runs.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/caliper-sh/caliper/pkg/source"
)

// DefaultWorkerMultiplier is applied to NumCPU when no worker count is
// given. 2x keeps cores busy through the CGO parser calls.
const DefaultWorkerMultiplier = 2

// Workers resolves a configured worker count, mapping <=0 to the default.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// ProcessingError records a per-file failure that degraded that file's
// output without failing the run.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ProcessingErrors is a thread-safe collector of per-file failures.
type ProcessingErrors struct {
	mu     sync.Mutex
	errors []ProcessingError
}

// Add appends an error to the collection.
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.errors = append(e.errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// All returns the collected errors.
func (e *ProcessingErrors) All() []ProcessingError {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ProcessingError, len(e.errors))
	copy(out, e.errors)
	return out
}

// HasErrors reports whether any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch len(e.errors) {
	case 0:
		return "no errors"
	case 1:
		return e.errors[0].Error()
	default:
		return fmt.Sprintf("%d files degraded (first: %v)", len(e.errors), e.errors[0])
	}
}

// ProgressFunc is called once per completed file.
type ProgressFunc func()

// MapTree applies fn to every file concurrently and returns the results in
// input order. fn must handle its own per-file degradation; a panic inside
// fn is contained and reported to errs (when non-nil) with that file's
// result left at the zero value.
//
// Cancellation is cooperative: it is checked before each file, in-flight
// files finish, and the context error is returned. Results are only
// complete when the returned error is nil.
func MapTree[T any](ctx context.Context, files []source.File, workers int, fn func(context.Context, source.File) T, onProgress ProgressFunc, errs *ProcessingErrors) ([]T, error) {
	results := make([]T, len(files))
	if len(files) == 0 {
		return results, ctx.Err()
	}

	p := pool.New().WithMaxGoroutines(Workers(workers))
	for i, f := range files {
		select {
		case <-ctx.Done():
			p.Wait()
			return results, ctx.Err()
		default:
		}

		p.Go(func() {
			defer func() {
				if r := recover(); r != nil && errs != nil {
					errs.Add(f.Path, fmt.Errorf("panic: %v", r))
				}
				if onProgress != nil {
					onProgress()
				}
			}()
			results[i] = fn(ctx, f)
		})
	}
	p.Wait()

	return results, ctx.Err()
}

// ForEach applies fn to every file concurrently, discarding results.
// Cancellation semantics match MapTree.
func ForEach(ctx context.Context, files []source.File, workers int, fn func(context.Context, source.File), onProgress ProgressFunc) error {
	_, err := MapTree(ctx, files, workers, func(ctx context.Context, f source.File) struct{} {
		fn(ctx, f)
		return struct{}{}
	}, onProgress, nil)
	return err
}
