// internal/generator/generator.go
//
// Generator contract and failure type for daily puzzle generation.
// The generator is a pure adapter: prompt in, structured payload out.
// It never writes to the cache, and it never repairs a malformed
// response: any deviation from the expected shape is a hard failure.

package generator

import (
	"context"
	"fmt"

	"github.com/riddleyu/go-server/internal/puzzle"
)

// Generator produces the puzzle for a date, avoiding answers in exclude.
type Generator interface {
	Generate(ctx context.Context, date string, exclude []string) (*puzzle.Puzzle, error)
}

// GenerationError wraps any failure to obtain a usable payload from the
// content service: transport errors, empty responses, unparseable JSON,
// or a payload failing puzzle validation.
type GenerationError struct {
	Date string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate puzzle for %s: %v", e.Date, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
