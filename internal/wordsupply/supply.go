// Package wordsupply provides batches of words for a typing test.
//
// A Supply never reports an error to its caller. Failures are logged and surface
// as an empty batch, which the session treats as "nothing available yet".
package wordsupply

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/fasttype/internal/generator"
)

// Supply returns up to count words, or none on failure.
type Supply interface {
	Fetch(ctx context.Context, count int) []string
}

// List draws random words from an in-memory word list.
type List struct {
	words []string
	gen   *generator.Generator
}

// NewList returns a Supply backed by words.
func NewList(words []string, gen *generator.Generator) *List {
	return &List{words: words, gen: gen}
}

// Fetch implements Supply.
func (l *List) Fetch(ctx context.Context, count int) []string {
	if ctx.Err() != nil {
		return nil
	}
	return l.gen.Pick(l.words, count)
}

// Fallback tries each supply in order and returns the first non-empty batch.
type Fallback struct {
	sources []Supply
	log     zerolog.Logger
}

// NewFallback chains sources.
func NewFallback(log zerolog.Logger, sources ...Supply) *Fallback {
	return &Fallback{sources: sources, log: log}
}

// Fetch implements Supply.
func (f *Fallback) Fetch(ctx context.Context, count int) []string {
	for i, src := range f.sources {
		if ctx.Err() != nil {
			return nil
		}
		if words := src.Fetch(ctx, count); len(words) > 0 {
			if i > 0 {
				f.log.Debug().Int("source", i).Msg("using fallback word source")
			}
			return words
		}
	}
	return nil
}
