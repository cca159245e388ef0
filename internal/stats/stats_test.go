package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/fasttype/internal/model"
)

func sampleResults() []model.ResultAggregate {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return []model.ResultAggregate{
		{ResultID: 1, EndedAt: base, DurationSec: 60, CorrectWords: 40, AttemptedWords: 50, WPM: 40, Accuracy: 80},
		{ResultID: 2, EndedAt: base.Add(time.Hour), DurationSec: 60, CorrectWords: 60, AttemptedWords: 60, WPM: 60, Accuracy: 100},
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(sampleResults())
	assert.Equal(t, 2, sum.Tests)
	assert.InDelta(t, 50, sum.AvgWPM, 1e-9)
	assert.InDelta(t, 60, sum.BestWPM, 1e-9)
	assert.InDelta(t, 90, sum.AvgAccuracy, 1e-9)
	assert.Equal(t, 100, sum.Correct)
	assert.Equal(t, 110, sum.Attempted)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	assert.Equal(t, []float64{2, 3, 5, 7}, got)
	assert.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 1))
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil))
	assert.Equal(t, "++", Sparkline([]float64{3, 3}))
	line := Sparkline([]float64{0, 5, 10})
	require.Len(t, line, 3)
	assert.Equal(t, byte(' '), line[0])
	assert.Equal(t, byte('@'), line[2])
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, sampleResults(), 5))
	out := buf.String()
	for _, want := range []string{"Tests: 2", "Avg WPM: 50.00", "Best WPM: 60.00", "Avg Accuracy: 90.00%", "Words: 100/110 correct", "Trend:"} {
		assert.Contains(t, out, want)
	}

	buf.Reset()
	require.NoError(t, RenderSummary(&buf, nil, 5))
	assert.Equal(t, "No results found.\n", buf.String())
}

func TestRenderResultsTableNewestFirst(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderResultsTable(&buf, sampleResults()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Results", lines[0])
	assert.Contains(t, lines[2], "60/60")
	assert.Contains(t, lines[3], "40/50")
}

func TestRenderMissedTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderMissedTable(&buf, []model.MissedWord{{Target: "dog", Misses: 1, Attempts: 4}}))
	out := buf.String()
	assert.Contains(t, out, "Missed Words")
	assert.Contains(t, out, "25%")

	buf.Reset()
	require.NoError(t, RenderMissedTable(&buf, nil))
	assert.Equal(t, "No missed words.\n", buf.String())
}
