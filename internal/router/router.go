package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cinemashers/cinemash/internal/config"
	"github.com/cinemashers/cinemash/internal/handler"
	"github.com/cinemashers/cinemash/internal/middleware"
)

// Handlers bundles every handler the server registers. The struct keeps
// RegisterRoutes' signature stable as endpoints are added.
type Handlers struct {
	GameInfo     *handler.GameInfoHandler
	PublicPuzzle *handler.PublicPuzzleHandler
	AdminAuth    *handler.AdminAuthHandler
	AdminPuzzle  *handler.AdminPuzzleHandler
	AdminPoster  *handler.AdminPosterHandler
	Assets       *handler.AssetHandler
}

// RegisterRoutes wires all public routes: health, the game API, poster
// assets with mobile substitution, and the static sites. The response
// cache only wraps the public GET API; poster bytes and static files are
// already served straight from disk.
func RegisterRoutes(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.Use(middleware.DetectMobile())

	e.GET("/healthz", handler.Health)

	api := e.Group("/api")
	api.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	api.GET("/game-info", h.GameInfo.Get)
	api.GET("/puzzle/random", h.PublicPuzzle.GetRandom)
	// The literal segments must be registered before the :id parameter so
	// "first-active" is not parsed as a puzzle id.
	api.GET("/puzzle/first-active", h.PublicPuzzle.GetFirstActive)
	api.GET("/puzzle/last-active", h.PublicPuzzle.GetLastActive)
	api.GET("/puzzle/:id", h.PublicPuzzle.GetByID)
	api.GET("/puzzle/:id/next-active", h.PublicPuzzle.GetNextActive)
	api.GET("/puzzle/:id/prev-active", h.PublicPuzzle.GetPrevActive)

	e.GET("/posters/*", h.Assets.ServePoster)
	e.GET("/puzzle/:id", h.Assets.ServeShell)
	e.Static("/admin", cfg.AdminDir)
	e.Static("/", cfg.PublicDir)
}

// RegisterAdmin wires the admin API. Login is the only open endpoint;
// everything else sits behind the JWT middleware, and the whole group is
// rate limited when Redis is available.
func RegisterAdmin(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	g := e.Group("/api/admin")
	g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	g.POST("/login", h.AdminAuth.Login)

	auth := g.Group("")
	auth.Use(middleware.JWTAuth(cfg.JWTSecret))
	auth.GET("/puzzles", h.AdminPuzzle.List)
	auth.GET("/puzzle/:id", h.AdminPuzzle.GetDetail)
	auth.PUT("/puzzle/:id", h.AdminPuzzle.Update)
	auth.POST("/puzzle", h.AdminPuzzle.Create)
	auth.GET("/verify", h.AdminPuzzle.Verify)
	auth.GET("/posters", h.AdminPoster.List)
	auth.PUT("/poster/:id", h.AdminPoster.Reassign)
	auth.POST("/upload-poster", h.AdminPoster.Upload)
}
