// Package repository contains data access logic for the puzzle domain. This
// file defines the puzzle repository: composed read views for the public
// game, admin listings, and the transactional create/update paths. All
// multi-statement writes run inside a single sql.Tx with one error path
// triggering rollback.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cinemashers/cinemash/internal/model"
)

// ErrMovieNotFound indicates that an UPDATE targeted a movie slot
// (puzzle_id, movie_number) that does not exist. During a puzzle update it
// aborts the whole transaction.
var ErrMovieNotFound = errors.New("movie not found")

// PuzzleView is the composed public read model: the puzzle row joined with
// its solution, its two movies ordered by movie_number, and the filename of
// its first poster when one exists.
type PuzzleView struct {
	Puzzle      model.Puzzle
	MashupTitle string
	Movies      []model.Movie
	Poster      string // filename of the first poster, empty when none
}

// AdminPuzzleRow is one entry of the admin listing: every puzzle, active or
// not, with its answer and whether at least one poster references it.
type AdminPuzzleRow struct {
	Puzzle      model.Puzzle
	MashupTitle string
	HasPoster   bool
}

// AdminPuzzleDetail is the full admin view of one puzzle: solution, the
// complete movie list and the complete poster list (not just the first).
type AdminPuzzleDetail struct {
	Puzzle      model.Puzzle
	MashupTitle string
	Movies      []model.Movie
	Posters     []model.Poster
}

// MovieUpdate carries the editable fields of one movie slot in an admin
// update, matched by MovieNumber.
type MovieUpdate struct {
	MovieNumber int
	Title       string
	Year        int
	IMDbURL     string
}

// PuzzleUpdate carries every field an admin update may touch. All fields
// are written unconditionally, mirroring the admin form which always
// submits the complete record.
type PuzzleUpdate struct {
	Clue        string
	Tagline     string
	Synopsis    string
	Credits     string
	IsActive    bool
	MashupTitle string
	Movies      []MovieUpdate
}

// NewPuzzle carries everything needed to create a puzzle with its solution
// and both movies in one transaction. The new puzzle starts inactive until
// a poster is uploaded for it.
type NewPuzzle struct {
	Clue        string
	Tagline     string
	Synopsis    string
	Credits     string
	MashupTitle string
	Movie1      MovieUpdate
	Movie2      MovieUpdate
}

// IntegrityIssue describes one puzzle violating the data model invariants
// (exactly one solution, exactly two movies numbered 1 and 2).
type IntegrityIssue struct {
	PuzzleID   int64
	Solutions  int
	Movies     int
	Complaints []string
}

// PuzzleRepo manages persistence for puzzles and their composed views.
type PuzzleRepo struct {
	db *sql.DB
}

// NewPuzzleRepo constructs a PuzzleRepo with the given DB handle.
func NewPuzzleRepo(db *sql.DB) *PuzzleRepo {
	return &PuzzleRepo{db: db}
}

// DB exposes the underlying sql.DB. It allows callers to begin transactions
// spanning multiple repositories.
func (r *PuzzleRepo) DB() *sql.DB {
	return r.db
}

// baseSelect is the puzzle+solution join every public view starts from.
const baseSelect = `SELECT puzzles.id, puzzles.clue, puzzles.tagline, puzzles.synopsis, puzzles.credits, puzzles.is_active,
       solutions.mashup_title
  FROM puzzles
  JOIN solutions ON puzzles.id = solutions.puzzle_id`

// scanHead scans one row of baseSelect into a PuzzleView shell. Nullable
// text columns collapse to empty strings.
func scanHead(row *sql.Row) (*PuzzleView, error) {
	var v PuzzleView
	var tagline, synopsis, credits sql.NullString
	err := row.Scan(&v.Puzzle.ID, &v.Puzzle.Clue, &tagline, &synopsis, &credits, &v.Puzzle.IsActive, &v.MashupTitle)
	if err != nil {
		return nil, err
	}
	v.Puzzle.Tagline = tagline.String
	v.Puzzle.Synopsis = synopsis.String
	v.Puzzle.Credits = credits.String
	return &v, nil
}

// completeView attaches the movies (ordered by movie_number) and the first
// poster to a view head. A missing poster is not an error; the view's
// Poster field stays empty.
func (r *PuzzleRepo) completeView(ctx context.Context, v *PuzzleView) (*PuzzleView, error) {
	movies, err := r.moviesFor(ctx, v.Puzzle.ID)
	if err != nil {
		return nil, err
	}
	v.Movies = movies

	const q = `SELECT filename FROM posters WHERE puzzle_id = ? LIMIT 1`
	var filename string
	err = r.db.QueryRowContext(ctx, q, v.Puzzle.ID).Scan(&filename)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	v.Poster = filename
	return v, nil
}

// moviesFor returns the movies of one puzzle ordered by movie_number.
func (r *PuzzleRepo) moviesFor(ctx context.Context, puzzleID int64) ([]model.Movie, error) {
	const q = `SELECT id, puzzle_id, movie_number, title, year, imdb_url
                 FROM movies WHERE puzzle_id = ? ORDER BY movie_number`
	rows, err := r.db.QueryContext(ctx, q, puzzleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var movies []model.Movie
	for rows.Next() {
		var m model.Movie
		var year sql.NullInt64
		var imdb sql.NullString
		if err := rows.Scan(&m.ID, &m.PuzzleID, &m.MovieNumber, &m.Title, &year, &imdb); err != nil {
			return nil, err
		}
		m.Year = int(year.Int64)
		m.IMDbURL = imdb.String
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// viewFromHeadQuery runs a head query expected to return at most one row
// and completes the resulting view.
func (r *PuzzleRepo) viewFromHeadQuery(ctx context.Context, query string, args ...any) (*PuzzleView, error) {
	v, err := scanHead(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPuzzleNotFound
		}
		return nil, err
	}
	return r.completeView(ctx, v)
}

// GetRandomActive selects one active puzzle uniformly at random and returns
// its composed view. It returns ErrPuzzleNotFound when no active puzzles
// exist.
func (r *PuzzleRepo) GetRandomActive(ctx context.Context) (*PuzzleView, error) {
	return r.viewFromHeadQuery(ctx, baseSelect+`
 WHERE puzzles.is_active = 1
 ORDER BY RANDOM()
 LIMIT 1`)
}

// GetByID returns the composed view of one puzzle regardless of its active
// flag; direct links may target inactive puzzles.
func (r *PuzzleRepo) GetByID(ctx context.Context, id int64) (*PuzzleView, error) {
	return r.viewFromHeadQuery(ctx, baseSelect+`
 WHERE puzzles.id = ?`, id)
}

// GetNextActive returns the active puzzle with the smallest id greater than
// the given id. ErrPuzzleNotFound means the caller reached the end and
// should wrap to GetFirstActive.
func (r *PuzzleRepo) GetNextActive(ctx context.Context, id int64) (*PuzzleView, error) {
	return r.viewFromHeadQuery(ctx, baseSelect+`
 WHERE puzzles.is_active = 1 AND puzzles.id > ?
 ORDER BY puzzles.id ASC
 LIMIT 1`, id)
}

// GetPrevActive returns the active puzzle with the largest id less than the
// given id. ErrPuzzleNotFound means the caller reached the start and should
// wrap to GetLastActive.
func (r *PuzzleRepo) GetPrevActive(ctx context.Context, id int64) (*PuzzleView, error) {
	return r.viewFromHeadQuery(ctx, baseSelect+`
 WHERE puzzles.is_active = 1 AND puzzles.id < ?
 ORDER BY puzzles.id DESC
 LIMIT 1`, id)
}

// GetFirstActive returns the lowest-id active puzzle, the wrap target of
// the circular forward traversal.
func (r *PuzzleRepo) GetFirstActive(ctx context.Context) (*PuzzleView, error) {
	return r.viewFromHeadQuery(ctx, baseSelect+`
 WHERE puzzles.is_active = 1
 ORDER BY puzzles.id ASC
 LIMIT 1`)
}

// GetLastActive returns the highest-id active puzzle, the wrap target of
// the circular backward traversal.
func (r *PuzzleRepo) GetLastActive(ctx context.Context) (*PuzzleView, error) {
	return r.viewFromHeadQuery(ctx, baseSelect+`
 WHERE puzzles.is_active = 1
 ORDER BY puzzles.id DESC
 LIMIT 1`)
}

// ListForAdmin returns every puzzle (active and inactive) with its answer
// and a derived has_poster flag, ordered by id.
func (r *PuzzleRepo) ListForAdmin(ctx context.Context) ([]AdminPuzzleRow, error) {
	const q = `SELECT p.id, p.clue, p.tagline, p.synopsis, p.credits, p.is_active,
       s.mashup_title,
       EXISTS (SELECT 1 FROM posters WHERE posters.puzzle_id = p.id) AS has_poster
  FROM puzzles p
  JOIN solutions s ON p.id = s.puzzle_id
 ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AdminPuzzleRow
	for rows.Next() {
		var row AdminPuzzleRow
		var tagline, synopsis, credits sql.NullString
		if err := rows.Scan(&row.Puzzle.ID, &row.Puzzle.Clue, &tagline, &synopsis, &credits,
			&row.Puzzle.IsActive, &row.MashupTitle, &row.HasPoster); err != nil {
			return nil, err
		}
		row.Puzzle.Tagline = tagline.String
		row.Puzzle.Synopsis = synopsis.String
		row.Puzzle.Credits = credits.String
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetDetailForAdmin returns one puzzle with its solution, full movie list
// and full poster list. It returns ErrPuzzleNotFound when the id is absent.
func (r *PuzzleRepo) GetDetailForAdmin(ctx context.Context, id int64) (*AdminPuzzleDetail, error) {
	head, err := scanHead(r.db.QueryRowContext(ctx, baseSelect+` WHERE puzzles.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPuzzleNotFound
		}
		return nil, err
	}
	detail := &AdminPuzzleDetail{Puzzle: head.Puzzle, MashupTitle: head.MashupTitle}

	if detail.Movies, err = r.moviesFor(ctx, id); err != nil {
		return nil, err
	}

	const q = `SELECT id, puzzle_id, filename, movie_title, original_filename
                 FROM posters WHERE puzzle_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p model.Poster
		var movieTitle, original sql.NullString
		if err := rows.Scan(&p.ID, &p.PuzzleID, &p.Filename, &movieTitle, &original); err != nil {
			return nil, err
		}
		p.MovieTitle = movieTitle.String
		p.OriginalFilename = original.String
		detail.Posters = append(detail.Posters, p)
	}
	return detail, rows.Err()
}

// Update rewrites a puzzle's text fields and active flag, its solution's
// mashup title, and each supplied movie matched by movie_number, all inside
// one transaction. Any failing step rolls back every change, including a
// movie slot that matches no row.
func (r *PuzzleRepo) Update(ctx context.Context, id int64, upd PuzzleUpdate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE puzzles SET clue = ?, tagline = ?, synopsis = ?, credits = ?, is_active = ?
         WHERE id = ?`,
		upd.Clue, upd.Tagline, upd.Synopsis, upd.Credits, upd.IsActive, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrPuzzleNotFound
	}

	if _, err := tx.ExecContext(ctx, `
        UPDATE solutions SET mashup_title = ? WHERE puzzle_id = ?`,
		upd.MashupTitle, id); err != nil {
		return err
	}

	for _, m := range upd.Movies {
		res, err := tx.ExecContext(ctx, `
            UPDATE movies SET title = ?, year = ?, imdb_url = ?
             WHERE puzzle_id = ? AND movie_number = ?`,
			m.Title, m.Year, m.IMDbURL, id, m.MovieNumber)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrMovieNotFound
		}
	}

	return tx.Commit()
}

// Create inserts a new puzzle together with its solution and both movies in
// one transaction. The id is assigned as the current maximum plus one and
// returned on success. The puzzle starts inactive.
func (r *PuzzleRepo) Create(ctx context.Context, np NewPuzzle) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var maxID sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(id) FROM puzzles`).Scan(&maxID); err != nil {
		return 0, err
	}
	id := maxID.Int64 + 1

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO puzzles (id, clue, tagline, synopsis, credits, is_active)
        VALUES (?, ?, ?, ?, ?, 0)`,
		id, np.Clue, np.Tagline, np.Synopsis, np.Credits); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO solutions (puzzle_id, mashup_title) VALUES (?, ?)`,
		id, np.MashupTitle); err != nil {
		return 0, err
	}
	for i, m := range []MovieUpdate{np.Movie1, np.Movie2} {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO movies (puzzle_id, movie_number, title, year, imdb_url)
            VALUES (?, ?, ?, ?, ?)`,
			id, i+1, m.Title, m.Year, m.IMDbURL); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// VerifyIntegrity reports every puzzle whose related rows violate the data
// model invariants: one solution per puzzle, two movies numbered 1 and 2.
// An empty slice means the database is consistent.
func (r *PuzzleRepo) VerifyIntegrity(ctx context.Context) ([]IntegrityIssue, error) {
	const q = `SELECT p.id,
       (SELECT COUNT(*) FROM solutions s WHERE s.puzzle_id = p.id)  AS solutions,
       (SELECT COUNT(*) FROM movies m WHERE m.puzzle_id = p.id)     AS movies,
       (SELECT COUNT(DISTINCT m.movie_number) FROM movies m
         WHERE m.puzzle_id = p.id AND m.movie_number IN (1, 2))     AS numbered
  FROM puzzles p
 ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var issues []IntegrityIssue
	for rows.Next() {
		var id int64
		var solutions, movies, numbered int
		if err := rows.Scan(&id, &solutions, &movies, &numbered); err != nil {
			return nil, err
		}
		issue := IntegrityIssue{PuzzleID: id, Solutions: solutions, Movies: movies}
		if solutions != 1 {
			issue.Complaints = append(issue.Complaints, "expected exactly one solution")
		}
		if movies != 2 || numbered != 2 {
			issue.Complaints = append(issue.Complaints, "expected exactly two movies numbered 1 and 2")
		}
		if len(issue.Complaints) > 0 {
			issues = append(issues, issue)
		}
	}
	return issues, rows.Err()
}
