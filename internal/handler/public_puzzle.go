// This file defines handlers for the public puzzle API. These routes allow
// unauthenticated players to fetch puzzles; inactive puzzles only ever leak
// through direct id lookups, which deliberately ignore the active flag so
// shared links keep working.
package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cinemashers/cinemash/internal/repository"
)

// PublicPuzzleHandler aggregates the repositories needed for the public
// game endpoints.
type PublicPuzzleHandler struct {
	PuzzleRepo *repository.PuzzleRepo
}

// NewPublicPuzzleHandler constructs a PublicPuzzleHandler.
func NewPublicPuzzleHandler(repo *repository.PuzzleRepo) *PublicPuzzleHandler {
	return &PublicPuzzleHandler{PuzzleRepo: repo}
}

// SolutionMovie is one of the two source movies inside a puzzle solution.
type SolutionMovie struct {
	Title   string `json:"title"`
	Year    int    `json:"year"`
	IMDbURL string `json:"imdbUrl"`
}

// PuzzleSolution is the answer block of a puzzle response. The movie fields
// are only populated in the detail shape (random / by-id).
type PuzzleSolution struct {
	MashupTitle string         `json:"mashupTitle"`
	Movie1      *SolutionMovie `json:"movie1,omitempty"`
	Movie2      *SolutionMovie `json:"movie2,omitempty"`
}

// PuzzleResponse is the shape served by /api/puzzle/random and
// /api/puzzle/:id: solution carries both movies, poster is a URL or null.
type PuzzleResponse struct {
	ID       int64          `json:"id"`
	Clue     string         `json:"clue"`
	Tagline  string         `json:"tagline"`
	Synopsis string         `json:"synopsis"`
	Credits  string         `json:"credits"`
	Solution PuzzleSolution `json:"solution"`
	Poster   *string        `json:"poster"`
}

// TraversalMovie is one movie entry in the traversal response shape.
type TraversalMovie struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Year    int    `json:"year"`
	IMDbURL string `json:"imdbUrl"`
}

// TraversalResponse is the shape served by the next/prev/first/last-active
// endpoints: the solution carries only the answer, the movies live in their
// own array, and the poster URL field is named posterUrl.
type TraversalResponse struct {
	ID        int64            `json:"id"`
	Clue      string           `json:"clue"`
	Tagline   string           `json:"tagline"`
	Synopsis  string           `json:"synopsis"`
	Credits   string           `json:"credits"`
	PosterURL *string          `json:"posterUrl"`
	Solution  PuzzleSolution   `json:"solution"`
	Movies    []TraversalMovie `json:"movies"`
}

// posterURL maps a stored poster filename to its public URL, or nil when
// the puzzle has no poster.
func posterURL(filename string) *string {
	if filename == "" {
		return nil
	}
	u := "/posters/" + filename
	return &u
}

// detailResponse converts a composed view into the random/by-id shape.
func detailResponse(v *repository.PuzzleView) PuzzleResponse {
	resp := PuzzleResponse{
		ID:       v.Puzzle.ID,
		Clue:     v.Puzzle.Clue,
		Tagline:  v.Puzzle.Tagline,
		Synopsis: v.Puzzle.Synopsis,
		Credits:  v.Puzzle.Credits,
		Solution: PuzzleSolution{MashupTitle: v.MashupTitle},
		Poster:   posterURL(v.Poster),
	}
	for _, m := range v.Movies {
		sm := &SolutionMovie{Title: m.Title, Year: m.Year, IMDbURL: m.IMDbURL}
		switch m.MovieNumber {
		case 1:
			resp.Solution.Movie1 = sm
		case 2:
			resp.Solution.Movie2 = sm
		}
	}
	return resp
}

// traversalResponse converts a composed view into the traversal shape.
func traversalResponse(v *repository.PuzzleView) TraversalResponse {
	resp := TraversalResponse{
		ID:        v.Puzzle.ID,
		Clue:      v.Puzzle.Clue,
		Tagline:   v.Puzzle.Tagline,
		Synopsis:  v.Puzzle.Synopsis,
		Credits:   v.Puzzle.Credits,
		PosterURL: posterURL(v.Poster),
		Solution:  PuzzleSolution{MashupTitle: v.MashupTitle},
		Movies:    make([]TraversalMovie, 0, len(v.Movies)),
	}
	for _, m := range v.Movies {
		resp.Movies = append(resp.Movies, TraversalMovie{
			Number: m.MovieNumber, Title: m.Title, Year: m.Year, IMDbURL: m.IMDbURL,
		})
	}
	return resp
}

// GetRandom handles GET /api/puzzle/random. It serves an active puzzle
// chosen uniformly at random, or 404 when no active puzzles exist.
func (h *PublicPuzzleHandler) GetRandom(c echo.Context) error {
	v, err := h.PuzzleRepo.GetRandomActive(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrPuzzleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No puzzles found"})
		}
		log.Printf("error getting random puzzle: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get a random puzzle"})
	}
	return c.JSON(http.StatusOK, detailResponse(v))
}

// GetByID handles GET /api/puzzle/:id. Direct links may target inactive
// puzzles, so the active flag is ignored here.
func (h *PublicPuzzleHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid puzzle id"})
	}
	v, err := h.PuzzleRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPuzzleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Puzzle not found"})
		}
		log.Printf("error getting puzzle %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get the puzzle"})
	}
	return c.JSON(http.StatusOK, detailResponse(v))
}

// GetNextActive handles GET /api/puzzle/:id/next-active. A 404 tells the
// client it walked off the end of the active sequence and should wrap
// around via /api/puzzle/first-active.
func (h *PublicPuzzleHandler) GetNextActive(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid puzzle id"})
	}
	v, err := h.PuzzleRepo.GetNextActive(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPuzzleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No next active puzzle found"})
		}
		log.Printf("error getting next active puzzle: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get next active puzzle"})
	}
	return c.JSON(http.StatusOK, traversalResponse(v))
}

// GetPrevActive handles GET /api/puzzle/:id/prev-active, the backward
// counterpart of GetNextActive wrapping via /api/puzzle/last-active.
func (h *PublicPuzzleHandler) GetPrevActive(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid puzzle id"})
	}
	v, err := h.PuzzleRepo.GetPrevActive(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPuzzleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No previous active puzzle found"})
		}
		log.Printf("error getting previous active puzzle: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get previous active puzzle"})
	}
	return c.JSON(http.StatusOK, traversalResponse(v))
}

// GetFirstActive handles GET /api/puzzle/first-active.
func (h *PublicPuzzleHandler) GetFirstActive(c echo.Context) error {
	v, err := h.PuzzleRepo.GetFirstActive(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrPuzzleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No active puzzles found"})
		}
		log.Printf("error getting first active puzzle: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get first active puzzle"})
	}
	return c.JSON(http.StatusOK, traversalResponse(v))
}

// GetLastActive handles GET /api/puzzle/last-active.
func (h *PublicPuzzleHandler) GetLastActive(c echo.Context) error {
	v, err := h.PuzzleRepo.GetLastActive(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrPuzzleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No active puzzles found"})
		}
		log.Printf("error getting last active puzzle: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get last active puzzle"})
	}
	return c.JSON(http.StatusOK, traversalResponse(v))
}
