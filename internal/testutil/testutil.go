// Package testutil provides shared helpers for tests: a fresh in-memory
// database with the full schema and seed helpers for puzzles and posters.
package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/cinemashers/cinemash/internal/database"
	_ "modernc.org/sqlite"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full
// schema. The pool is capped at one connection because each in-memory
// connection is its own database.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.CreateSchema(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return db
}

// CreateTestPuzzle inserts a puzzle with its solution and both movies. The
// movie titles derive from the mashup title; tests needing specific movies
// update the rows afterwards or insert their own.
func CreateTestPuzzle(t *testing.T, db *sql.DB, id int64, mashupTitle string, active bool) {
	t.Helper()

	_, err := db.Exec(`
        INSERT INTO puzzles (id, clue, tagline, synopsis, credits, is_active)
        VALUES (?, ?, ?, ?, ?, ?)`,
		id, "clue for "+mashupTitle, "tagline", "synopsis", "credits", active)
	if err != nil {
		t.Fatalf("Failed to insert puzzle: %v", err)
	}
	_, err = db.Exec(`INSERT INTO solutions (puzzle_id, mashup_title) VALUES (?, ?)`, id, mashupTitle)
	if err != nil {
		t.Fatalf("Failed to insert solution: %v", err)
	}
	for n := 1; n <= 2; n++ {
		_, err = db.Exec(`
            INSERT INTO movies (puzzle_id, movie_number, title, year, imdb_url)
            VALUES (?, ?, ?, ?, ?)`,
			id, n, mashupTitle+" part", 1990+n, "https://www.imdb.com/find?q=test")
		if err != nil {
			t.Fatalf("Failed to insert movie %d: %v", n, err)
		}
	}
}

// CreateTestPoster inserts a poster row for a puzzle and returns its id.
func CreateTestPoster(t *testing.T, db *sql.DB, puzzleID int64, filename string) int64 {
	t.Helper()

	res, err := db.Exec(`
        INSERT INTO posters (puzzle_id, filename, movie_title, original_filename)
        VALUES (?, ?, ?, ?)`,
		puzzleID, filename, "Test Mashup", filename)
	if err != nil {
		t.Fatalf("Failed to insert poster: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read poster id: %v", err)
	}
	return id
}

// SeedGameInfo ensures the game_info singleton exists for tests that read
// game metadata.
func SeedGameInfo(t *testing.T, db *sql.DB) {
	t.Helper()

	if err := database.EnsureGameInfo(context.Background(), db); err != nil {
		t.Fatalf("Failed to seed game info: %v", err)
	}
}
