// Package model defines shared data structures.
package model

import "time"

// Word sources accepted by Config.Source.
const (
	SourceRemote = "remote"
	SourceLocal  = "local"
	SourceAuto   = "auto"
)

// Config defines typing test settings.
type Config struct {
	Duration  int           `flag:"duration" validate:"gt=0"`
	BatchSize int           `flag:"batch" validate:"gt=0"`
	Source    string        `flag:"source" validate:"oneof=remote local auto"`
	URL       string        `flag:"url" validate:"required_unless=Source local"`
	Lang      string        `flag:"lang" validate:"required"`
	Timeout   time.Duration `flag:"timeout" validate:"gt=0"`
}

// HistoryConfig defines filters for the history view.
type HistoryConfig struct {
	Since *time.Time
	Last  int
}

// ResultStats captures a finished typing test.
type ResultStats struct {
	StartedAt      time.Time
	EndedAt        time.Time
	DurationSec    int
	Source         string
	CorrectWords   int
	AttemptedWords int
	WPM            float64
	Accuracy       float64
}

// WordStats stores one committed word of a test.
type WordStats struct {
	Position int
	Target   string
	Typed    string
	Correct  bool
}

// ResultAggregate summarizes a stored result for reporting.
type ResultAggregate struct {
	ResultID       int64
	EndedAt        time.Time
	DurationSec    int
	CorrectWords   int
	AttemptedWords int
	WPM            float64
	Accuracy       float64
}

// MissedWord aggregates how often a target word was mistyped.
type MissedWord struct {
	Target   string
	Misses   int
	Attempts int
}
