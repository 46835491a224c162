// This file defines the admin puzzle management handlers: listing all
// puzzles regardless of visibility, full detail with every movie and
// poster, atomic updates, puzzle creation and the integrity report.
package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cinemashers/cinemash/internal/repository"
)

// AdminPuzzleHandler groups the repositories needed for puzzle
// administration.
type AdminPuzzleHandler struct {
	PuzzleRepo *repository.PuzzleRepo
}

// NewAdminPuzzleHandler constructs an AdminPuzzleHandler.
func NewAdminPuzzleHandler(repo *repository.PuzzleRepo) *AdminPuzzleHandler {
	return &AdminPuzzleHandler{PuzzleRepo: repo}
}

// adminPuzzleRow is one entry of the admin listing. Field names follow the
// database columns, which is what the admin front-end expects.
type adminPuzzleRow struct {
	ID          int64  `json:"id"`
	Clue        string `json:"clue"`
	Tagline     string `json:"tagline"`
	Synopsis    string `json:"synopsis"`
	Credits     string `json:"credits"`
	IsActive    bool   `json:"is_active"`
	MashupTitle string `json:"mashup_title"`
	HasPoster   bool   `json:"has_poster"`
}

// adminMovie mirrors a movies table row in admin responses and update
// requests.
type adminMovie struct {
	ID          int64  `json:"id,omitempty"`
	PuzzleID    int64  `json:"puzzle_id,omitempty"`
	MovieNumber int    `json:"movie_number"`
	Title       string `json:"title"`
	Year        int    `json:"year"`
	IMDbURL     string `json:"imdb_url"`
}

// adminPoster mirrors a posters table row in admin responses.
type adminPoster struct {
	ID               int64  `json:"id"`
	PuzzleID         int64  `json:"puzzle_id"`
	Filename         string `json:"filename"`
	MovieTitle       string `json:"movie_title"`
	OriginalFilename string `json:"original_filename,omitempty"`
}

// List handles GET /api/admin/puzzles: every puzzle, active or not, with
// its answer and whether it has at least one poster.
func (h *AdminPuzzleHandler) List(c echo.Context) error {
	rows, err := h.PuzzleRepo.ListForAdmin(c.Request().Context())
	if err != nil {
		log.Printf("error getting all puzzles: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get puzzles"})
	}
	out := make([]adminPuzzleRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, adminPuzzleRow{
			ID:          r.Puzzle.ID,
			Clue:        r.Puzzle.Clue,
			Tagline:     r.Puzzle.Tagline,
			Synopsis:    r.Puzzle.Synopsis,
			Credits:     r.Puzzle.Credits,
			IsActive:    r.Puzzle.IsActive,
			MashupTitle: r.MashupTitle,
			HasPoster:   r.HasPoster,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// GetDetail handles GET /api/admin/puzzle/:id: the full record including
// the complete movie and poster lists.
func (h *AdminPuzzleHandler) GetDetail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid puzzle id"})
	}
	d, err := h.PuzzleRepo.GetDetailForAdmin(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPuzzleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Puzzle not found"})
		}
		log.Printf("error getting puzzle details: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get puzzle details"})
	}

	movies := make([]adminMovie, 0, len(d.Movies))
	for _, m := range d.Movies {
		movies = append(movies, adminMovie{
			ID: m.ID, PuzzleID: m.PuzzleID, MovieNumber: m.MovieNumber,
			Title: m.Title, Year: m.Year, IMDbURL: m.IMDbURL,
		})
	}
	posters := make([]adminPoster, 0, len(d.Posters))
	for _, p := range d.Posters {
		posters = append(posters, adminPoster{
			ID: p.ID, PuzzleID: p.PuzzleID, Filename: p.Filename, MovieTitle: p.MovieTitle,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":           d.Puzzle.ID,
		"clue":         d.Puzzle.Clue,
		"tagline":      d.Puzzle.Tagline,
		"synopsis":     d.Puzzle.Synopsis,
		"credits":      d.Puzzle.Credits,
		"is_active":    d.Puzzle.IsActive,
		"mashup_title": d.MashupTitle,
		"movies":       movies,
		"posters":      posters,
	})
}

type updatePuzzleRequest struct {
	Clue        string       `json:"clue"`
	Tagline     string       `json:"tagline"`
	Synopsis    string       `json:"synopsis"`
	Credits     string       `json:"credits"`
	MashupTitle string       `json:"mashup_title"`
	IsActive    bool         `json:"is_active"`
	Movies      []adminMovie `json:"movies"`
}

// Update handles PUT /api/admin/puzzle/:id. The puzzle row, its solution
// and each supplied movie are written inside one transaction; a failure
// anywhere, including a movie slot that does not exist, persists nothing.
func (h *AdminPuzzleHandler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid puzzle id"})
	}
	var req updatePuzzleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	upd := repository.PuzzleUpdate{
		Clue:        req.Clue,
		Tagline:     req.Tagline,
		Synopsis:    req.Synopsis,
		Credits:     req.Credits,
		IsActive:    req.IsActive,
		MashupTitle: req.MashupTitle,
	}
	for _, m := range req.Movies {
		upd.Movies = append(upd.Movies, repository.MovieUpdate{
			MovieNumber: m.MovieNumber, Title: m.Title, Year: m.Year, IMDbURL: m.IMDbURL,
		})
	}

	if err := h.PuzzleRepo.Update(c.Request().Context(), id, upd); err != nil {
		switch {
		case errors.Is(err, repository.ErrPuzzleNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Puzzle not found"})
		case errors.Is(err, repository.ErrMovieNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Movie slot does not exist for this puzzle"})
		default:
			log.Printf("error updating puzzle %d: %v", id, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update puzzle"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Puzzle updated successfully"})
}

type createPuzzleRequest struct {
	Clue        string       `json:"clue"`
	Tagline     string       `json:"tagline"`
	Synopsis    string       `json:"synopsis"`
	Credits     string       `json:"credits"`
	MashupTitle string       `json:"mashup_title"`
	Movies      []adminMovie `json:"movies"`
}

// Create handles POST /api/admin/puzzle. A puzzle is only coherent with a
// clue, an answer and both movies, so all are required; the new puzzle
// starts inactive until a poster is uploaded for it.
func (h *AdminPuzzleHandler) Create(c echo.Context) error {
	var req createPuzzleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Clue == "" || req.MashupTitle == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "clue and mashup_title are required"})
	}
	var movie1, movie2 *adminMovie
	for i := range req.Movies {
		switch req.Movies[i].MovieNumber {
		case 1:
			movie1 = &req.Movies[i]
		case 2:
			movie2 = &req.Movies[i]
		}
	}
	if movie1 == nil || movie2 == nil || movie1.Title == "" || movie2.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movies 1 and 2 with titles are required"})
	}

	id, err := h.PuzzleRepo.Create(c.Request().Context(), repository.NewPuzzle{
		Clue:        req.Clue,
		Tagline:     req.Tagline,
		Synopsis:    req.Synopsis,
		Credits:     req.Credits,
		MashupTitle: req.MashupTitle,
		Movie1:      repository.MovieUpdate{Title: movie1.Title, Year: movie1.Year, IMDbURL: movie1.IMDbURL},
		Movie2:      repository.MovieUpdate{Title: movie2.Title, Year: movie2.Year, IMDbURL: movie2.IMDbURL},
	})
	if err != nil {
		log.Printf("error creating puzzle: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create puzzle"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": id})
}

// Verify handles GET /api/admin/verify: a report of puzzles violating the
// one-solution/two-movies invariants. An empty issues array means the
// database is consistent.
func (h *AdminPuzzleHandler) Verify(c echo.Context) error {
	issues, err := h.PuzzleRepo.VerifyIntegrity(c.Request().Context())
	if err != nil {
		log.Printf("error verifying puzzles: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to verify puzzles"})
	}
	type issueRow struct {
		PuzzleID  int64    `json:"puzzle_id"`
		Solutions int      `json:"solutions"`
		Movies    int      `json:"movies"`
		Problems  []string `json:"problems"`
	}
	out := make([]issueRow, 0, len(issues))
	for _, is := range issues {
		out = append(out, issueRow{
			PuzzleID: is.PuzzleID, Solutions: is.Solutions, Movies: is.Movies, Problems: is.Complaints,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": len(out) == 0, "issues": out})
}
