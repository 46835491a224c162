// This file defines the poster repository: administrative listing,
// re-linking a poster to a different puzzle, and the transactional insert
// used by the upload path, which also flips the target puzzle active.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinemashers/cinemash/internal/model"
)

// ErrPosterNotFound indicates that a poster row was not located in the DB.
var ErrPosterNotFound = errors.New("poster not found")

// PosterRepo manages persistence for posters.
type PosterRepo struct {
	db *sql.DB
}

// NewPosterRepo constructs a PosterRepo with the given DB handle.
func NewPosterRepo(db *sql.DB) *PosterRepo {
	return &PosterRepo{db: db}
}

// DB exposes the underlying sql.DB for callers that need transactions
// spanning multiple repositories.
func (r *PosterRepo) DB() *sql.DB {
	return r.db
}

// ListAll returns every poster record ordered by puzzle then id, for the
// admin poster manager.
func (r *PosterRepo) ListAll(ctx context.Context) ([]model.Poster, error) {
	const q = `SELECT id, puzzle_id, filename, movie_title, original_filename
                 FROM posters ORDER BY puzzle_id, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Poster
	for rows.Next() {
		var p model.Poster
		var movieTitle, original sql.NullString
		if err := rows.Scan(&p.ID, &p.PuzzleID, &p.Filename, &movieTitle, &original); err != nil {
			return nil, err
		}
		p.MovieTitle = movieTitle.String
		p.OriginalFilename = original.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// Reassign re-links a poster to a different puzzle. It validates both sides
// and returns ErrPosterNotFound or ErrPuzzleNotFound accordingly.
func (r *PosterRepo) Reassign(ctx context.Context, posterID, puzzleID int64) error {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM puzzles WHERE id = ?`, puzzleID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPuzzleNotFound
	}
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `UPDATE posters SET puzzle_id = ? WHERE id = ?`, puzzleID, posterID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPosterNotFound
	}
	return nil
}

// CreateWithActivation inserts a poster row and sets its puzzle active in
// one transaction. A poster is the activation gate: a puzzle without one is
// considered incomplete. The generated poster id is assigned back to p. It
// returns ErrPuzzleNotFound when the target puzzle does not exist and the
// caller is expected to remove the already-written image file on any error.
func (r *PosterRepo) CreateWithActivation(ctx context.Context, p *model.Poster) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE puzzles SET is_active = 1 WHERE id = ?`, p.PuzzleID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrPuzzleNotFound
	}

	res, err = tx.ExecContext(ctx, `
        INSERT INTO posters (puzzle_id, filename, movie_title, original_filename)
        VALUES (?, ?, ?, ?)`,
		p.PuzzleID, p.Filename, p.MovieTitle, p.OriginalFilename)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id

	return tx.Commit()
}
