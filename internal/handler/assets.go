// This file defines the asset handlers: poster images with mobile-variant
// substitution and the SPA shell for direct puzzle links.
package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cinemashers/cinemash/internal/imageopt"
	"github.com/cinemashers/cinemash/internal/middleware"
)

// AssetHandler serves poster images and the front-end shell.
type AssetHandler struct {
	PostersDir string
	PublicDir  string
}

// NewAssetHandler constructs an AssetHandler.
func NewAssetHandler(postersDir, publicDir string) *AssetHandler {
	return &AssetHandler{PostersDir: postersDir, PublicDir: publicDir}
}

// ServePoster handles GET /posters/*. Mobile clients get the resized
// variant when one exists on disk; desktop clients, explicit /mobile/
// requests and posters without a variant get the original file. The
// decision is stateless per request apart from the existence check.
func (h *AssetHandler) ServePoster(c echo.Context) error {
	requested := c.Param("*")
	if requested == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	if middleware.MobileFromContext(c) && !strings.HasPrefix(requested, "mobile/") {
		mobilePath := filepath.Join(h.PostersDir, "mobile", imageopt.MobileFilename(requested))
		if info, err := os.Stat(mobilePath); err == nil && !info.IsDir() {
			return c.File(mobilePath)
		}
		// No optimized variant yet; fall back to the original.
	}

	original := filepath.Join(h.PostersDir, filepath.Base(requested))
	if strings.HasPrefix(requested, "mobile/") {
		original = filepath.Join(h.PostersDir, "mobile", filepath.Base(requested))
	}
	if info, err := os.Stat(original); err != nil || info.IsDir() {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.File(original)
}

// ServeShell handles GET /puzzle/:id by returning the SPA shell; the
// client-side code reads the id from the URL and fetches the puzzle JSON.
func (h *AssetHandler) ServeShell(c echo.Context) error {
	return c.File(filepath.Join(h.PublicDir, "index.html"))
}
