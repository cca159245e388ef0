// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/fasttype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for test results.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_s INTEGER NOT NULL,
			source TEXT NOT NULL,
			correct_words INTEGER NOT NULL,
			attempted_words INTEGER NOT NULL,
			wpm REAL NOT NULL,
			accuracy REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS result_words (
			result_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			target TEXT NOT NULL,
			typed TEXT NOT NULL,
			correct INTEGER NOT NULL,
			PRIMARY KEY (result_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_ended_at ON results(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_result_words_target ON result_words(target);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertResult stores a finished test and its committed words.
func (s *Store) InsertResult(ctx context.Context, res model.ResultStats, words []model.WordStats) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	r, err := tx.ExecContext(ctx,
		`INSERT INTO results (started_at, ended_at, duration_s, source, correct_words, attempted_words, wpm, accuracy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.StartedAt.Format(time.RFC3339Nano),
		res.EndedAt.Format(time.RFC3339Nano),
		res.DurationSec,
		res.Source,
		res.CorrectWords,
		res.AttemptedWords,
		res.WPM,
		res.Accuracy,
	)
	if err != nil {
		return 0, err
	}
	id, err = r.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(words) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO result_words (result_id, position, target, typed, correct)
			 VALUES (?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, w := range words {
			if _, err = stmt.ExecContext(ctx, id, w.Position, w.Target, w.Typed, w.Correct); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListResults returns stored results oldest first, filtered by cfg.
func (s *Store) ListResults(ctx context.Context, cfg model.HistoryConfig) ([]model.ResultAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, duration_s, correct_words, attempted_words, wpm, accuracy
		FROM results
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.ResultAggregate
	for rows.Next() {
		var agg model.ResultAggregate
		var endedAt string
		if err := rows.Scan(&agg.ResultID, &endedAt, &agg.DurationSec, &agg.CorrectWords, &agg.AttemptedWords, &agg.WPM, &agg.Accuracy); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		results = append(results, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(results) > cfg.Last {
		results = results[len(results)-cfg.Last:]
	}
	return results, nil
}

// MissedWords aggregates mistyped targets across results, most missed first.
func (s *Store) MissedWords(ctx context.Context, resultIDs []int64, limit int) ([]model.MissedWord, error) {
	if len(resultIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(resultIDs))
	args := make([]any, 0, len(resultIDs)+1)
	for i, id := range resultIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	query := fmt.Sprintf(`SELECT target, SUM(CASE WHEN correct = 0 THEN 1 ELSE 0 END) AS misses, COUNT(*) AS attempts
		FROM result_words
		WHERE result_id IN (%s)
		GROUP BY target
		HAVING misses > 0
		ORDER BY misses DESC, target ASC`, strings.Join(placeholders, ","))
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.MissedWord
	for rows.Next() {
		var mw model.MissedWord
		if err := rows.Scan(&mw.Target, &mw.Misses, &mw.Attempts); err != nil {
			return nil, err
		}
		result = append(result, mw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
