// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/fasttype/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a list of results.
type Summary struct {
	Tests       int
	AvgWPM      float64
	BestWPM     float64
	AvgAccuracy float64
	Correct     int
	Attempted   int
}

// Summarize computes averages over results. Accuracy is averaged per test.
func Summarize(results []model.ResultAggregate) Summary {
	var sum Summary
	if len(results) == 0 {
		return sum
	}
	var totalWPM, totalAcc float64
	for _, r := range results {
		totalWPM += r.WPM
		totalAcc += r.Accuracy
		if r.WPM > sum.BestWPM {
			sum.BestWPM = r.WPM
		}
		sum.Correct += r.CorrectWords
		sum.Attempted += r.AttemptedWords
	}
	sum.Tests = len(results)
	count := float64(len(results))
	sum.AvgWPM = totalWPM / count
	sum.AvgAccuracy = totalAcc / count
	return sum
}

// WPMSeries extracts the WPM of each result in order.
func WPMSeries(results []model.ResultAggregate) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.WPM
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary block for results.
func RenderSummary(w io.Writer, results []model.ResultAggregate, window int) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	sum := Summarize(results)
	lines := []string{
		"Summary",
		fmt.Sprintf("Tests: %d", sum.Tests),
		fmt.Sprintf("Avg WPM: %.2f", sum.AvgWPM),
		fmt.Sprintf("Best WPM: %.2f", sum.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", sum.AvgAccuracy),
		fmt.Sprintf("Words: %d/%d correct", sum.Correct, sum.Attempted),
		fmt.Sprintf("Trend: %s", Sparkline(MovingAverage(WPMSeries(results), window))),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ResultRows formats results as table rows, newest first.
func ResultRows(results []model.ResultAggregate) [][]string {
	rows := make([][]string, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		rows = append(rows, []string{
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%ds", r.DurationSec),
			fmt.Sprintf("%.1f", r.WPM),
			fmt.Sprintf("%.1f%%", r.Accuracy),
			fmt.Sprintf("%d/%d", r.CorrectWords, r.AttemptedWords),
		})
	}
	return rows
}

// ResultHeaders are the column titles matching ResultRows.
var ResultHeaders = []string{"Ended", "Length", "WPM", "Accuracy", "Words"}

// MissedRows formats missed words as table rows.
func MissedRows(missed []model.MissedWord) [][]string {
	rows := make([][]string, 0, len(missed))
	for _, mw := range missed {
		rate := 0.0
		if mw.Attempts > 0 {
			rate = float64(mw.Misses) / float64(mw.Attempts) * 100
		}
		rows = append(rows, []string{
			mw.Target,
			fmt.Sprintf("%d", mw.Misses),
			fmt.Sprintf("%d", mw.Attempts),
			fmt.Sprintf("%.0f%%", rate),
		})
	}
	return rows
}

// MissedHeaders are the column titles matching MissedRows.
var MissedHeaders = []string{"Word", "Misses", "Attempts", "Miss rate"}

// RenderResultsTable prints results newest first.
func RenderResultsTable(w io.Writer, results []model.ResultAggregate) error {
	if len(results) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Results"); err != nil {
		return err
	}
	return writeTable(w, ResultHeaders, ResultRows(results), map[int]bool{1: true, 2: true, 3: true, 4: true})
}

// RenderMissedTable prints the most frequently mistyped words.
func RenderMissedTable(w io.Writer, missed []model.MissedWord) error {
	if len(missed) == 0 {
		_, err := fmt.Fprintln(w, "No missed words.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Missed Words"); err != nil {
		return err
	}
	return writeTable(w, MissedHeaders, MissedRows(missed), map[int]bool{1: true, 2: true, 3: true})
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool) error {
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
