// Package session implements the typing test state machine.
//
// State is a value. Every event has a single entry point that returns the next
// State together with the Effects the host has to carry out (start the timer,
// fetch a batch of words, show the final score). State never performs I/O.
package session

import (
	"slices"
	"strings"
	"unicode"
)

// Defaults for a test.
const (
	DefaultDuration  = 60
	DefaultBatchSize = 10
)

// Phase is the lifecycle stage of a test.
type Phase int

// Phases of a test.
const (
	Idle Phase = iota
	Running
	Finished
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Options configures a test.
type Options struct {
	DurationSec int
	BatchSize   int
}

func (o Options) normalized() Options {
	if o.DurationSec <= 0 {
		o.DurationSec = DefaultDuration
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	return o
}

// TypedWord is the judgment for one committed word.
type TypedWord struct {
	Text    string
	Target  string
	Correct bool
}

// Effects lists the side effects requested by a transition.
type Effects struct {
	StartTimer bool
	FetchBatch bool
	Finished   bool
}

// State is the complete typing test state.
//
// History spans every batch of the test. BatchStart is len(History) at the time
// Current was installed, so len(History) == BatchStart+WordIndex always holds.
type State struct {
	Options Options

	Current   []string
	Next      []string
	Buffer    []rune
	WordIndex int
	History   []TypedWord

	BatchStart       int
	SecondsRemaining int
	Phase            Phase
	Score            Score

	// Fetching is set while a batch request is outstanding.
	Fetching bool
}

// New returns an idle test and requests the first batch.
func New(opts Options) (State, Effects) {
	opts = opts.normalized()
	s := State{
		Options:          opts,
		SecondsRemaining: opts.DurationSec,
		Phase:            Idle,
		Fetching:         true,
	}
	return s, Effects{FetchBatch: true}
}

// Restart discards the test and starts over from scratch.
func (s State) Restart() (State, Effects) {
	return New(s.Options)
}

// Type handles a typed character. A space commits the buffered word.
func (s State) Type(r rune) (State, Effects) {
	if s.Phase == Finished {
		return s, Effects{}
	}
	if r == ' ' {
		return s.Commit()
	}
	if unicode.IsSpace(r) || !unicode.IsPrint(r) {
		return s, Effects{}
	}
	var fx Effects
	s.Buffer = append(slices.Clip(s.Buffer), r)
	if s.Phase == Idle {
		s.Phase = Running
		fx.StartTimer = true
	}
	return s, fx
}

// Backspace removes the last buffered character.
func (s State) Backspace() (State, Effects) {
	if s.Phase == Finished || len(s.Buffer) == 0 {
		return s, Effects{}
	}
	s.Buffer = s.Buffer[:len(s.Buffer)-1]
	return s, Effects{}
}

// Commit judges the buffered word against the current target.
func (s State) Commit() (State, Effects) {
	if s.Phase == Finished {
		return s, Effects{}
	}
	typed := strings.TrimSpace(string(s.Buffer))
	if typed == "" {
		return s, Effects{}
	}
	var fx Effects
	if s.WordIndex >= len(s.Current) {
		// Nothing to judge against until a batch arrives.
		fx.FetchBatch = requestFetch(&s)
		return s, fx
	}

	target := s.Current[s.WordIndex]
	s.History = append(slices.Clip(s.History), TypedWord{
		Text:    typed,
		Target:  target,
		Correct: typed == target,
	})
	s.WordIndex++
	s.Buffer = nil

	if s.WordIndex == len(s.Current) {
		s.Current, s.Next = s.Next, nil
		s.WordIndex = 0
		s.BatchStart = len(s.History)
		fx.FetchBatch = requestFetch(&s)
		return s, fx
	}
	if s.WordIndex >= len(s.Current)/2 && len(s.Next) == 0 {
		fx.FetchBatch = requestFetch(&s)
	}
	return s, fx
}

// Tick handles one second of the countdown.
func (s State) Tick() (State, Effects) {
	if s.Phase != Running {
		return s, Effects{}
	}
	if s.SecondsRemaining > 0 {
		s.SecondsRemaining--
	}
	if s.SecondsRemaining > 0 {
		return s, Effects{}
	}
	s.Phase = Finished
	s.Fetching = false
	s.Score = ComputeScore(s.History, s.Options.DurationSec)
	return s, Effects{Finished: true}
}

// Load handles a completed batch fetch. An empty batch only clears the
// outstanding request, the next trigger point asks again.
func (s State) Load(words []string) (State, Effects) {
	if s.Phase == Finished {
		return s, Effects{}
	}
	s.Fetching = false
	words = cleanBatch(words)
	if len(words) == 0 {
		return s, Effects{}
	}
	var fx Effects
	switch {
	case len(s.Current) == 0:
		s.Current = words
		s.WordIndex = 0
		s.BatchStart = len(s.History)
		if len(s.Next) == 0 {
			fx.FetchBatch = requestFetch(&s)
		}
	case len(s.Next) == 0:
		s.Next = words
	}
	return s, fx
}

// Elapsed returns the seconds counted down so far.
func (s State) Elapsed() int {
	return s.Options.DurationSec - s.SecondsRemaining
}

func requestFetch(s *State) bool {
	if s.Fetching {
		return false
	}
	s.Fetching = true
	return true
}

func cleanBatch(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" || strings.IndexFunc(w, unicode.IsSpace) >= 0 {
			continue
		}
		out = append(out, w)
	}
	return out
}
