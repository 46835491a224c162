// This file defines the admin poster handlers: listing, re-linking a poster
// to a different puzzle, and the multipart upload path that stores the
// image, records it and activates its puzzle.
package handler

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinemashers/cinemash/internal/imageopt"
	"github.com/cinemashers/cinemash/internal/model"
	"github.com/cinemashers/cinemash/internal/queue"
	"github.com/cinemashers/cinemash/internal/repository"
	queue_publisher "github.com/cinemashers/cinemash/internal/service"
)

// AdminPosterHandler groups everything the poster admin endpoints need:
// the poster repository, the storage directory, the upload cap and the
// mobile optimizer.
type AdminPosterHandler struct {
	PosterRepo     *repository.PosterRepo
	PostersDir     string
	MaxUploadBytes int64
	Optimizer      *imageopt.Optimizer
	PublishEvents  bool // disabled in tests to avoid broker dial attempts
}

// NewAdminPosterHandler constructs an AdminPosterHandler.
func NewAdminPosterHandler(repo *repository.PosterRepo, postersDir string, maxUploadMB int64, opt *imageopt.Optimizer) *AdminPosterHandler {
	return &AdminPosterHandler{
		PosterRepo:     repo,
		PostersDir:     postersDir,
		MaxUploadBytes: maxUploadMB << 20,
		Optimizer:      opt,
		PublishEvents:  true,
	}
}

// List handles GET /api/admin/posters: every poster record ordered by
// puzzle then id.
func (h *AdminPosterHandler) List(c echo.Context) error {
	posters, err := h.PosterRepo.ListAll(c.Request().Context())
	if err != nil {
		log.Printf("error getting all posters: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get posters"})
	}
	out := make([]adminPoster, 0, len(posters))
	for _, p := range posters {
		out = append(out, adminPoster{
			ID: p.ID, PuzzleID: p.PuzzleID, Filename: p.Filename,
			MovieTitle: p.MovieTitle, OriginalFilename: p.OriginalFilename,
		})
	}
	return c.JSON(http.StatusOK, out)
}

type reassignRequest struct {
	PuzzleID int64 `json:"puzzle_id"`
}

// Reassign handles PUT /api/admin/poster/:id, re-linking the poster to a
// different puzzle.
func (h *AdminPosterHandler) Reassign(c echo.Context) error {
	posterID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid poster id"})
	}
	var req reassignRequest
	if err := c.Bind(&req); err != nil || req.PuzzleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "puzzle_id is required"})
	}
	if err := h.PosterRepo.Reassign(c.Request().Context(), posterID, req.PuzzleID); err != nil {
		switch {
		case errors.Is(err, repository.ErrPosterNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Poster not found"})
		case errors.Is(err, repository.ErrPuzzleNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Puzzle not found"})
		default:
			log.Printf("error updating poster %d: %v", posterID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update poster"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Poster updated successfully"})
}

// Upload handles POST /api/admin/upload-poster: multipart form with the
// image under "poster" plus puzzleId and mashupTitle fields. The image is
// stored under its declared base filename (collisions overwrite), a poster
// row is inserted and the puzzle is activated in one transaction, and the
// stored file is removed when that transaction fails. Mobile optimization
// and the broker event run after commit and are best-effort; their failure
// never fails the upload.
func (h *AdminPosterHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("poster")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "No file uploaded"})
	}
	puzzleIDRaw := c.FormValue("puzzleId")
	if puzzleIDRaw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "No puzzle ID provided"})
	}
	puzzleID, err := strconv.ParseInt(puzzleIDRaw, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "Invalid puzzle ID"})
	}
	mashupTitle := c.FormValue("mashupTitle")

	if fileHeader.Size > h.MaxUploadBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "File exceeds the size limit"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Printf("error opening uploaded file: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "Failed to read upload"})
	}
	defer src.Close()

	// The cap re-applies on the actual bytes; the multipart header size is
	// client-declared.
	data, err := io.ReadAll(io.LimitReader(src, h.MaxUploadBytes+1))
	if err != nil {
		log.Printf("error reading uploaded file: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "Failed to read upload"})
	}
	if int64(len(data)) > h.MaxUploadBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "File exceeds the size limit"})
	}
	if ct := http.DetectContentType(data); len(ct) < 6 || ct[:6] != "image/" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "Only image files are allowed"})
	}

	// Base() strips any path components a hostile client put in the
	// declared filename.
	fileName := filepath.Base(fileHeader.Filename)
	if fileName == "." || fileName == string(filepath.Separator) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "Invalid filename"})
	}
	if err := os.MkdirAll(h.PostersDir, 0o755); err != nil {
		log.Printf("error creating posters dir: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "Failed to store file"})
	}
	filePath := filepath.Join(h.PostersDir, fileName)
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		log.Printf("error writing poster file: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "Failed to store file"})
	}

	poster := &model.Poster{
		PuzzleID:         puzzleID,
		Filename:         fileName,
		MovieTitle:       mashupTitle,
		OriginalFilename: fileName,
	}
	if err := h.PosterRepo.CreateWithActivation(c.Request().Context(), poster); err != nil {
		// Compensating action: the file precedes the row, so remove it when
		// the row never lands. A crash between the two still leaks the file.
		if rmErr := os.Remove(filePath); rmErr != nil {
			log.Printf("error deleting uploaded file: %v", rmErr)
		}
		if errors.Is(err, repository.ErrPuzzleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "Puzzle not found"})
		}
		log.Printf("error inserting poster record: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "Failed to create poster record"})
	}

	resp := echo.Map{
		"success":  true,
		"message":  "Poster uploaded and linked successfully",
		"fileName": fileName,
		"puzzleId": puzzleID,
	}

	event := queue.PosterUploadedEvent{
		PosterID:    poster.ID,
		PuzzleID:    puzzleID,
		Filename:    fileName,
		MashupTitle: mashupTitle,
		SizeBytes:   int64(len(data)),
		UploadedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	if opt, err := h.Optimizer.OptimizeForMobile(fileName); err != nil {
		log.Printf("failed to optimize image for mobile: %v", err)
		resp["message"] = "Poster uploaded and linked successfully (mobile optimization failed)"
	} else {
		log.Printf("poster optimized for mobile: %s%% size reduction", opt.Savings)
		resp["message"] = "Poster uploaded, linked, and optimized for mobile successfully"
		resp["optimization"] = echo.Map{
			"originalSize":  fmt.Sprintf("%dKB", opt.OriginalSize/1024),
			"optimizedSize": fmt.Sprintf("%dKB", opt.OptimizedSize/1024),
			"savings":       opt.Savings + "%",
		}
		event.Optimized = true
		event.OptimizedSize = opt.OptimizedSize
	}

	if h.PublishEvents {
		// Best-effort; the publisher logs its own failures.
		_ = queue_publisher.PublishPosterUploaded(c.Request().Context(), event)
	}

	return c.JSON(http.StatusOK, resp)
}
