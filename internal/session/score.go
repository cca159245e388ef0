package session

// Score is the final result of a test.
type Score struct {
	Correct     int
	Attempted   int
	WPM         float64
	Accuracy    float64
	DurationSec int
}

// ComputeScore counts correct words and normalizes them to one minute.
// Accuracy is a percentage and is 0 when no word was attempted.
func ComputeScore(history []TypedWord, durationSec int) Score {
	score := Score{Attempted: len(history), DurationSec: durationSec}
	for _, w := range history {
		if w.Correct {
			score.Correct++
		}
	}
	if durationSec > 0 {
		score.WPM = float64(score.Correct) * 60 / float64(durationSec)
	}
	if score.Attempted > 0 {
		score.Accuracy = 100 * float64(score.Correct) / float64(score.Attempted)
	}
	return score
}
