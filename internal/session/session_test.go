package session

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeString(t *testing.T, s State, input string) (State, Effects) {
	t.Helper()
	var all Effects
	for _, r := range input {
		var fx Effects
		s, fx = s.Type(r)
		all = mergeEffects(all, fx)
	}
	return s, all
}

func mergeEffects(a, b Effects) Effects {
	return Effects{
		StartTimer: a.StartTimer || b.StartTimer,
		FetchBatch: a.FetchBatch || b.FetchBatch,
		Finished:   a.Finished || b.Finished,
	}
}

func expire(s State) (State, Effects) {
	var fx Effects
	for i := 0; i < s.Options.DurationSec+5; i++ {
		var step Effects
		s, step = s.Tick()
		fx = mergeEffects(fx, step)
	}
	return s, fx
}

func started(t *testing.T, opts Options, batch ...string) State {
	t.Helper()
	s, fx := New(opts)
	require.True(t, fx.FetchBatch)
	require.Equal(t, Idle, s.Phase)
	s, _ = s.Load(batch)
	return s
}

func TestNewDefaults(t *testing.T) {
	s, fx := New(Options{})
	assert.Equal(t, Effects{FetchBatch: true}, fx)
	assert.Equal(t, DefaultDuration, s.Options.DurationSec)
	assert.Equal(t, DefaultBatchSize, s.Options.BatchSize)
	assert.Equal(t, DefaultDuration, s.SecondsRemaining)
	assert.Empty(t, s.History)
	assert.True(t, s.Fetching)
}

func TestScenarioAllCorrect(t *testing.T) {
	s := started(t, Options{DurationSec: 60, BatchSize: 3}, "cat", "dog", "bird")
	s, fx := typeString(t, s, "cat dog ")
	assert.True(t, fx.StartTimer)
	assert.Equal(t, Running, s.Phase)

	s, fx = expire(s)
	require.True(t, fx.Finished)
	assert.Equal(t, Finished, s.Phase)
	assert.Equal(t, []TypedWord{
		{Text: "cat", Target: "cat", Correct: true},
		{Text: "dog", Target: "dog", Correct: true},
	}, s.History)
	assert.InDelta(t, 2, s.Score.WPM, 1e-9)
	assert.InDelta(t, 100, s.Score.Accuracy, 1e-9)
}

func TestScenarioMistyped(t *testing.T) {
	s := started(t, Options{DurationSec: 60, BatchSize: 1}, "cat")
	s, _ = typeString(t, s, "cta ")
	s, _ = expire(s)
	assert.Equal(t, []TypedWord{{Text: "cta", Target: "cat", Correct: false}}, s.History)
	assert.Zero(t, s.Score.WPM)
	assert.Zero(t, s.Score.Accuracy)
}

func TestCommitIsCaseSensitive(t *testing.T) {
	s := started(t, Options{}, "Go", "go")
	s, _ = typeString(t, s, "go go ")
	require.Len(t, s.History, 2)
	assert.False(t, s.History[0].Correct)
	assert.True(t, s.History[1].Correct)
}

func TestSpaceOnEmptyBufferIsNoop(t *testing.T) {
	s := started(t, Options{}, "a", "b")
	next, fx := s.Type(' ')
	assert.Equal(t, Effects{}, fx)
	assert.Equal(t, s, next)
	assert.Equal(t, Idle, next.Phase)
}

func TestBackspace(t *testing.T) {
	s := started(t, Options{}, "cat")
	next, fx := s.Backspace()
	assert.Equal(t, Effects{}, fx)
	assert.Equal(t, s, next)

	s, _ = typeString(t, s, "cax")
	s, _ = s.Backspace()
	assert.Equal(t, "ca", string(s.Buffer))
	assert.Equal(t, Running, s.Phase)
	s, _ = typeString(t, s, "t ")
	require.Len(t, s.History, 1)
	assert.True(t, s.History[0].Correct)
}

func TestTypeIgnoresControlRunes(t *testing.T) {
	s := started(t, Options{}, "cat")
	next, fx := s.Type('\t')
	assert.Equal(t, Effects{}, fx)
	assert.Equal(t, s, next)
	next, _ = s.Type('\x07')
	assert.Equal(t, s, next)
}

func TestTransitionsDoNotAliasPreviousState(t *testing.T) {
	s := started(t, Options{}, "abc", "abd", "x")
	s, _ = typeString(t, s, "ab")
	left, _ := s.Type('c')
	right, _ := s.Type('d')
	assert.Equal(t, "abc", string(left.Buffer))
	assert.Equal(t, "abd", string(right.Buffer))
	assert.Equal(t, "ab", string(s.Buffer))

	left, _ = left.Commit()
	right, _ = right.Commit()
	assert.True(t, left.History[0].Correct)
	assert.False(t, right.History[0].Correct)
	assert.Empty(t, s.History)
}

func TestTickIgnoredWhileIdle(t *testing.T) {
	s := started(t, Options{DurationSec: 5}, "cat")
	next, fx := s.Tick()
	assert.Equal(t, Effects{}, fx)
	assert.Equal(t, 5, next.SecondsRemaining)
}

func TestTickCountsDown(t *testing.T) {
	s := started(t, Options{DurationSec: 3}, "cat")
	s, _ = s.Type('c')
	s, fx := s.Tick()
	assert.Equal(t, 2, s.SecondsRemaining)
	assert.False(t, fx.Finished)
	assert.Equal(t, 1, s.Elapsed())
	s, _ = s.Tick()
	s, fx = s.Tick()
	assert.True(t, fx.Finished)
	assert.Equal(t, 0, s.SecondsRemaining)
}

func TestFinishedIsTerminal(t *testing.T) {
	s := started(t, Options{DurationSec: 2}, "cat", "dog")
	s, _ = typeString(t, s, "cat do")
	s, _ = expire(s)
	require.Equal(t, Finished, s.Phase)
	frozen := s

	s, fx := typeString(t, s, "g ")
	assert.Equal(t, Effects{}, fx)
	s, _ = s.Backspace()
	s, _ = s.Tick()
	s, _ = s.Load([]string{"new", "words"})
	assert.Equal(t, frozen, s)
	assert.Equal(t, 1, s.Score.Correct)
}

func TestZeroAttemptsAccuracy(t *testing.T) {
	s := started(t, Options{DurationSec: 1}, "cat")
	s, _ = s.Type('c')
	s, _ = expire(s)
	assert.Equal(t, 0, s.Score.Attempted)
	assert.Zero(t, s.Score.Accuracy)
	assert.Zero(t, s.Score.WPM)
}

func TestPrefetchAtMidpoint(t *testing.T) {
	batch := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	s, _ := New(Options{})
	s, fx := s.Load(batch)
	require.True(t, fx.FetchBatch, "second batch is requested after the first arrives")
	s, _ = s.Load(nil)
	assert.False(t, s.Fetching)
	assert.Empty(t, s.Next)

	for i := 0; i < 4; i++ {
		s, fx = typeString(t, s, batch[i]+" ")
		assert.False(t, fx.FetchBatch, "no fetch before midpoint (word %d)", i)
	}
	s, fx = typeString(t, s, "e ")
	assert.Equal(t, 5, s.WordIndex)
	assert.True(t, fx.FetchBatch)
	assert.True(t, s.Fetching)

	s, fx = typeString(t, s, "f ")
	assert.False(t, fx.FetchBatch, "fetch already outstanding")
}

func TestBatchSwap(t *testing.T) {
	s := started(t, Options{}, "a", "b")
	s, _ = s.Load([]string{"c", "d"})
	assert.Equal(t, []string{"c", "d"}, s.Next)

	s, fx := typeString(t, s, "a b ")
	assert.Equal(t, []string{"c", "d"}, s.Current)
	assert.Empty(t, s.Next)
	assert.Equal(t, 0, s.WordIndex)
	assert.Equal(t, 2, s.BatchStart)
	assert.True(t, fx.FetchBatch)
	assert.Empty(t, s.Buffer)

	s, _ = typeString(t, s, "c ")
	assert.Len(t, s.History, 3)
	assert.Equal(t, "c", s.History[2].Target)
}

func TestEmptySupplyRendersNothingAndRetries(t *testing.T) {
	s, _ := New(Options{})
	s, fx := s.Load(nil)
	assert.Equal(t, Effects{}, fx)
	assert.False(t, s.Fetching)
	assert.Empty(t, s.Words())

	s, _ = typeString(t, s, "cat")
	s, fx = s.Commit()
	assert.True(t, fx.FetchBatch, "committing without words retries the fetch")
	assert.Empty(t, s.History)
	assert.Equal(t, "cat", string(s.Buffer))

	s, _ = s.Load([]string{"cat"})
	s, _ = s.Commit()
	require.Len(t, s.History, 1)
	assert.True(t, s.History[0].Correct)
}

func TestSwapWithEmptyNextWaitsForFetch(t *testing.T) {
	s := started(t, Options{}, "a")
	s, _ = s.Load(nil)
	s, fx := typeString(t, s, "a ")
	assert.True(t, fx.FetchBatch)
	assert.Empty(t, s.Current)
	assert.Empty(t, s.Words())

	s, fx = s.Load([]string{"b", "c"})
	assert.Equal(t, []string{"b", "c"}, s.Current)
	assert.Equal(t, 1, s.BatchStart)
	assert.True(t, fx.FetchBatch)
}

func TestLoadDropsBlankWords(t *testing.T) {
	s := started(t, Options{}, " a ", "", "two words", "b")
	assert.Equal(t, []string{"a", "b"}, s.Current)
}

func TestHistoryInvariantRandomInput(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	alphabet := []rune("abc ")
	s, _ := New(Options{DurationSec: 30, BatchSize: 4})
	for step := 0; step < 5000; step++ {
		var fx Effects
		switch n := rnd.Intn(20); {
		case n == 0:
			s, fx = s.Tick()
		case n == 1:
			s, fx = s.Backspace()
		default:
			s, fx = s.Type(alphabet[rnd.Intn(len(alphabet))])
		}
		if s.Fetching && rnd.Intn(3) == 0 {
			var batch []string
			if rnd.Intn(4) != 0 {
				batch = []string{"ab", "ba", "c", "abc"}
			}
			s, _ = s.Load(batch)
		}
		_ = fx
		if s.Phase == Finished {
			break
		}
		require.Equal(t, s.BatchStart+s.WordIndex, len(s.History))
		require.True(t, s.WordIndex == 0 || s.WordIndex < len(s.Current))
		require.Len(t, s.Words(), len(s.Current))
	}
}

func TestRestart(t *testing.T) {
	s := started(t, Options{DurationSec: 10, BatchSize: 5}, "a")
	s, _ = typeString(t, s, "a ")
	s, _ = expire(s)
	s, fx := s.Restart()
	assert.True(t, fx.FetchBatch)
	assert.Equal(t, Idle, s.Phase)
	assert.Empty(t, s.History)
	assert.Equal(t, 10, s.SecondsRemaining)
	assert.Equal(t, Options{DurationSec: 10, BatchSize: 5}, s.Options)
}

func TestComputeScoreNormalizesDuration(t *testing.T) {
	history := []TypedWord{{Correct: true}, {Correct: true}, {Correct: false}, {Correct: true}}
	score := ComputeScore(history, 30)
	assert.Equal(t, 3, score.Correct)
	assert.Equal(t, 4, score.Attempted)
	assert.InDelta(t, 6, score.WPM, 1e-9)
	assert.InDelta(t, 75, score.Accuracy, 1e-9)

	assert.Zero(t, ComputeScore(history, 0).WPM)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "finished", Finished.String())
}
