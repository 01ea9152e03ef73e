// Package store handles SQLite persistence of finished games.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuivia/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for play history.
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
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			player TEXT NOT NULL,
			category TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			correct INTEGER NOT NULL,
			asked INTEGER NOT NULL,
			submitted INTEGER NOT NULL,
			submit_error TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS game_rounds (
			game_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			question_id INTEGER NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			guess TEXT NOT NULL,
			correct INTEGER NOT NULL,
			PRIMARY KEY (game_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_ended_at ON games(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_games_player ON games(player);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertGame stores a finished game and its rounds. An empty game ID is
// replaced with a new UUID, which is returned.
func (s *Store) InsertGame(ctx context.Context, game model.GameRecord, rounds []model.Round) (id string, err error) {
	if game.ID == "" {
		game.ID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO games (id, player, category, started_at, ended_at, correct, asked, submitted, submit_error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		game.ID,
		game.Player,
		game.Category,
		game.StartedAt.UTC().Format(time.RFC3339Nano),
		game.EndedAt.UTC().Format(time.RFC3339Nano),
		game.Correct,
		game.Asked,
		boolToInt(game.Submitted),
		game.SubmitError,
	)
	if err != nil {
		return "", err
	}

	if len(rounds) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO game_rounds (game_id, position, question_id, question, answer, guess, correct)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, r := range rounds {
			if _, err = stmt.ExecContext(ctx, game.ID, i, r.QuestionID, r.Question, r.Answer, r.Guess, boolToInt(r.Correct)); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return game.ID, nil
}

// ListGames returns games matching cfg ordered oldest first. Last keeps only
// the most recent N games.
func (s *Store) ListGames(ctx context.Context, cfg model.HistoryConfig) ([]model.GameRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Player != "" {
		clauses = append(clauses, "player = ?")
		args = append(args, cfg.Player)
	}
	limit := -1
	if cfg.Last > 0 {
		limit = cfg.Last
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT id, player, category, started_at, ended_at, correct, asked, submitted, submit_error
		FROM (
			SELECT * FROM games
			WHERE %s
			ORDER BY ended_at DESC
			LIMIT ?
		)
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
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

	var games []model.GameRecord
	for rows.Next() {
		var g model.GameRecord
		var startedAt, endedAt string
		var submitted int
		if err := rows.Scan(&g.ID, &g.Player, &g.Category, &startedAt, &endedAt, &g.Correct, &g.Asked, &submitted, &g.SubmitError); err != nil {
			return nil, err
		}
		if g.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if g.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		g.Submitted = submitted != 0
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

// ListRounds returns the rounds of one game in asking order.
func (s *Store) ListRounds(ctx context.Context, gameID string) ([]model.Round, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, question, answer, guess, correct
		 FROM game_rounds
		 WHERE game_id = ?
		 ORDER BY position ASC`, gameID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var rounds []model.Round
	for rows.Next() {
		var r model.Round
		var correct int
		if err := rows.Scan(&r.QuestionID, &r.Question, &r.Answer, &r.Guess, &correct); err != nil {
			return nil, err
		}
		r.Correct = correct != 0
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rounds, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
