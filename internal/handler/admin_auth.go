// This file defines the admin login handler. There is no public
// registration; the single admin account is seeded at startup from the
// environment and login exchanges its credentials for a short-lived JWT.
package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinemashers/cinemash/internal/repository"
	"github.com/cinemashers/cinemash/internal/utils"
)

// AdminAuthHandler issues access tokens for the admin panel.
type AdminAuthHandler struct {
	AdminUserRepo *repository.AdminUserRepo
	JWTSecret     string
	AccessTTLMin  int
}

// NewAdminAuthHandler constructs an AdminAuthHandler.
func NewAdminAuthHandler(repo *repository.AdminUserRepo, secret string, ttlMin int) *AdminAuthHandler {
	return &AdminAuthHandler{AdminUserRepo: repo, JWTSecret: secret, AccessTTLMin: ttlMin}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/admin/login. Unknown usernames and wrong
// passwords produce the same 401 so the response does not reveal which
// accounts exist.
func (h *AdminAuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil || req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	user, err := h.AdminUserRepo.GetByUsername(c.Request().Context(), req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrAdminUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		log.Printf("error loading admin user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !utils.VerifyPassword(user.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	tok, err := utils.NewAccessToken(h.JWTSecret, user.ID, user.Username, h.AccessTTLMin)
	if err != nil {
		log.Printf("error signing access token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"expires_at":   tok.Exp,
	})
}
