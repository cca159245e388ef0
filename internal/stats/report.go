// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"

	"github.com/verte-zerg/fasttype/internal/model"
)

// DefaultMissedLimit caps the missed-word list of a report.
const DefaultMissedLimit = 20

// Source is the subset of the store a report reads from.
type Source interface {
	ListResults(ctx context.Context, cfg model.HistoryConfig) ([]model.ResultAggregate, error)
	MissedWords(ctx context.Context, resultIDs []int64, limit int) ([]model.MissedWord, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Results []model.ResultAggregate
	Missed  []model.MissedWord
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, src Source, cfg model.HistoryConfig) (Report, error) {
	results, err := src.ListResults(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	missed, err := src.MissedWords(ctx, resultIDs(results), DefaultMissedLimit)
	if err != nil {
		return Report{}, err
	}
	return Report{Results: results, Missed: missed}, nil
}

func resultIDs(results []model.ResultAggregate) []int64 {
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.ResultID
	}
	return ids
}
