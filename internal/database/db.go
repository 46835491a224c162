package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Open opens the SQLite database at the given path and verifies the
// connection. Foreign keys are enabled per connection and the busy timeout
// keeps concurrent request handlers from failing instantly when the single
// writer lock is held.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// SQLite permits a single writer; keeping the pool small avoids
	// stacking up writers behind the lock.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// CreateSchema creates all application tables when they do not already
// exist. The statements are idempotent so the server can run them on every
// start.
func CreateSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS puzzles (
    id        INTEGER PRIMARY KEY,
    clue      TEXT NOT NULL,
    tagline   TEXT,
    synopsis  TEXT,
    credits   TEXT,
    is_active INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS solutions (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    puzzle_id    INTEGER NOT NULL UNIQUE REFERENCES puzzles(id),
    mashup_title TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS movies (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    puzzle_id    INTEGER NOT NULL REFERENCES puzzles(id),
    movie_number INTEGER NOT NULL CHECK (movie_number IN (1, 2)),
    title        TEXT NOT NULL,
    year         INTEGER,
    imdb_url     TEXT,
    UNIQUE (puzzle_id, movie_number)
);

CREATE TABLE IF NOT EXISTS posters (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    puzzle_id         INTEGER NOT NULL REFERENCES puzzles(id),
    filename          TEXT NOT NULL,
    movie_title       TEXT,
    original_filename TEXT
);

CREATE INDEX IF NOT EXISTS idx_posters_puzzle_id ON posters(puzzle_id);

CREATE TABLE IF NOT EXISTS game_info (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT,
    rules       TEXT
);

CREATE TABLE IF NOT EXISTS admin_users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL
);
`
	_, err := db.Exec(schema)
	return err
}

// EnsureGameInfo inserts the singleton game_info row (id=1) when it is
// missing, so the public read path never encounters an empty table. The
// rules column holds a JSON-encoded array of strings.
func EnsureGameInfo(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM game_info WHERE id = 1`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := db.ExecContext(ctx, `
        INSERT INTO game_info (id, name, description, rules)
        VALUES (1, 'Cinemashers', 'A movie-themed puzzle game',
                '["Read the clue and guess the two movies.","Combine their titles into one mashup title.","Reveal the poster to check your answer."]')`)
	return err
}
