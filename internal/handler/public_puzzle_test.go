package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/cinemashers/cinemash/internal/config"
	"github.com/cinemashers/cinemash/internal/handler"
	"github.com/cinemashers/cinemash/internal/imageopt"
	"github.com/cinemashers/cinemash/internal/repository"
	"github.com/cinemashers/cinemash/internal/router"
	"github.com/cinemashers/cinemash/internal/testutil"
	"github.com/cinemashers/cinemash/internal/utils"
)

// newTestServer builds an Echo instance with the full route table against a
// fresh in-memory database. Redis is absent, so cache and rate limiting run
// as pass-throughs; event publishing is disabled to avoid broker dials.
func newTestServer(t *testing.T) (*echo.Echo, *sql.DB, config.Config) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	testutil.SeedGameInfo(t, db)

	postersDir := t.TempDir()
	cfg := config.Config{
		Env:           "test",
		Port:          "0",
		PostersDir:    postersDir,
		PublicDir:     t.TempDir(),
		AdminDir:      t.TempDir(),
		JWTSecret:     "test-secret",
		AccessTTLMin:  15,
		BcryptCost:    4, // min bcrypt cost keeps tests fast
		AdminUsername: "admin",
		AdminPassword: "correct horse",
		MaxUploadMB:   5,
		MobileWidth:   600,
		MobileQuality: 80,
	}

	adminUsers := repository.NewAdminUserRepo(db)
	hash, err := utils.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		t.Fatalf("hashing admin password failed: %v", err)
	}
	if err := adminUsers.Ensure(context.Background(), cfg.AdminUsername, hash); err != nil {
		t.Fatalf("seeding admin user failed: %v", err)
	}

	puzzles := repository.NewPuzzleRepo(db)
	posters := repository.NewPosterRepo(db)
	optimizer := &imageopt.Optimizer{SourceDir: postersDir, MaxWidth: cfg.MobileWidth, Quality: cfg.MobileQuality}

	posterHandler := handler.NewAdminPosterHandler(posters, postersDir, cfg.MaxUploadMB, optimizer)
	posterHandler.PublishEvents = false

	h := router.Handlers{
		GameInfo:     handler.NewGameInfoHandler(repository.NewGameInfoRepo(db)),
		PublicPuzzle: handler.NewPublicPuzzleHandler(puzzles),
		AdminAuth:    handler.NewAdminAuthHandler(adminUsers, cfg.JWTSecret, cfg.AccessTTLMin),
		AdminPuzzle:  handler.NewAdminPuzzleHandler(puzzles),
		AdminPoster:  posterHandler,
		Assets:       handler.NewAssetHandler(postersDir, cfg.PublicDir),
	}

	e := echo.New()
	router.RegisterRoutes(e, h, cfg, nil)
	router.RegisterAdmin(e, h, cfg, nil)
	return e, db, cfg
}

func doJSON(t *testing.T, e *echo.Echo, method, path, token string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// TestPuzzleByIDConAirForceOne covers the canonical scenario: a puzzle made
// of Con Air (1997) and Air Force One (1997) whose answer reads back with
// both movies and matching years.
func TestPuzzleByIDConAirForceOne(t *testing.T) {
	e, db, _ := newTestServer(t)

	repo := repository.NewPuzzleRepo(db)
	id, err := repo.Create(context.Background(), repository.NewPuzzle{
		Clue:        "This mashup combines a prison transport plane with the most important aircraft in America.",
		Tagline:     "The President is now the prisoner.",
		MashupTitle: "Con Air Force One",
		Movie1:      repository.MovieUpdate{Title: "Con Air", Year: 1997, IMDbURL: "https://www.imdb.com/find?q=con+air"},
		Movie2:      repository.MovieUpdate{Title: "Air Force One", Year: 1997, IMDbURL: "https://www.imdb.com/find?q=air+force+one"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rec := doJSON(t, e, http.MethodGet, "/api/puzzle/1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp handler.PuzzleResponse
	decodeBody(t, rec, &resp)
	if resp.ID != id {
		t.Errorf("id = %d, want %d", resp.ID, id)
	}
	if resp.Solution.MashupTitle != "Con Air Force One" {
		t.Errorf("mashupTitle = %q, want %q", resp.Solution.MashupTitle, "Con Air Force One")
	}
	if resp.Solution.Movie1 == nil || resp.Solution.Movie1.Title != "Con Air" || resp.Solution.Movie1.Year != 1997 {
		t.Errorf("movie1 = %+v", resp.Solution.Movie1)
	}
	if resp.Solution.Movie2 == nil || resp.Solution.Movie2.Title != "Air Force One" || resp.Solution.Movie2.Year != 1997 {
		t.Errorf("movie2 = %+v", resp.Solution.Movie2)
	}
	if resp.Poster != nil {
		t.Errorf("poster = %v, want null for a puzzle without posters", *resp.Poster)
	}
}

// TestRandomWithNoActivePuzzles asserts the empty case surfaces as a clean
// 404 JSON error, never an unhandled failure.
func TestRandomWithNoActivePuzzles(t *testing.T) {
	e, db, _ := newTestServer(t)

	testutil.CreateTestPuzzle(t, db, 1, "Inactive Only", false)

	rec := doJSON(t, e, http.MethodGet, "/api/puzzle/random", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	if body["error"] == "" {
		t.Error("expected an error message in the 404 body")
	}
}

func TestRandomNeverServesInactive(t *testing.T) {
	e, db, _ := newTestServer(t)

	testutil.CreateTestPuzzle(t, db, 1, "Active", true)
	testutil.CreateTestPuzzle(t, db, 2, "Inactive", false)

	for i := 0; i < 20; i++ {
		rec := doJSON(t, e, http.MethodGet, "/api/puzzle/random", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var resp handler.PuzzleResponse
		decodeBody(t, rec, &resp)
		if resp.ID != 1 {
			t.Fatalf("random served inactive puzzle %d", resp.ID)
		}
	}
}

func TestTraversalEndpointsAndWrap(t *testing.T) {
	e, db, _ := newTestServer(t)

	testutil.CreateTestPuzzle(t, db, 2, "A", true)
	testutil.CreateTestPuzzle(t, db, 5, "B", true)
	testutil.CreateTestPuzzle(t, db, 9, "C", true)

	rec := doJSON(t, e, http.MethodGet, "/api/puzzle/2/next-active", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("next-active status = %d, want 200", rec.Code)
	}
	var step handler.TraversalResponse
	decodeBody(t, rec, &step)
	if step.ID != 5 {
		t.Errorf("next after 2 = %d, want 5", step.ID)
	}
	if len(step.Movies) != 2 {
		t.Errorf("traversal shape movies = %d, want 2", len(step.Movies))
	}

	// Walking off the end is the client's signal to wrap to first-active.
	rec = doJSON(t, e, http.MethodGet, "/api/puzzle/9/next-active", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("next past end status = %d, want 404", rec.Code)
	}
	rec = doJSON(t, e, http.MethodGet, "/api/puzzle/first-active", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("first-active status = %d, want 200", rec.Code)
	}
	decodeBody(t, rec, &step)
	if step.ID != 2 {
		t.Errorf("first-active = %d, want 2", step.ID)
	}

	rec = doJSON(t, e, http.MethodGet, "/api/puzzle/2/prev-active", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("prev before start status = %d, want 404", rec.Code)
	}
	rec = doJSON(t, e, http.MethodGet, "/api/puzzle/last-active", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("last-active status = %d, want 200", rec.Code)
	}
	decodeBody(t, rec, &step)
	if step.ID != 9 {
		t.Errorf("last-active = %d, want 9", step.ID)
	}
}

func TestGameInfoEndpoint(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/api/game-info", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		GameName        string   `json:"gameName"`
		GameDescription string   `json:"gameDescription"`
		GameRules       []string `json:"gameRules"`
	}
	decodeBody(t, rec, &body)
	if body.GameName != "Cinemashers" {
		t.Errorf("gameName = %q", body.GameName)
	}
	if len(body.GameRules) == 0 {
		t.Error("gameRules empty, want ordered rule list")
	}
}
