package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/cinemashers/cinemash/internal/config"
	"github.com/cinemashers/cinemash/internal/database"
	"github.com/cinemashers/cinemash/internal/handler"
	"github.com/cinemashers/cinemash/internal/imageopt"
	"github.com/cinemashers/cinemash/internal/queue"
	"github.com/cinemashers/cinemash/internal/repository"
	"github.com/cinemashers/cinemash/internal/router"
	"github.com/cinemashers/cinemash/internal/utils"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("error opening database: %v", err)
	}
	defer db.Close()
	log.Printf("connected to the SQLite database at %s", cfg.DBPath)

	if err := database.CreateSchema(db); err != nil {
		log.Fatalf("schema creation failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.EnsureGameInfo(ctx, db); err != nil {
		log.Fatalf("game info seeding failed: %v", err)
	}

	adminUsers := repository.NewAdminUserRepo(db)
	hash, err := utils.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hashing admin password failed: %v", err)
	}
	if err := adminUsers.Ensure(ctx, cfg.AdminUsername, hash); err != nil {
		log.Fatalf("admin user seeding failed: %v", err)
	}

	puzzles := repository.NewPuzzleRepo(db)
	posters := repository.NewPosterRepo(db)
	gameInfo := repository.NewGameInfoRepo(db)

	optimizer := &imageopt.Optimizer{
		SourceDir: cfg.PostersDir,
		MaxWidth:  cfg.MobileWidth,
		Quality:   cfg.MobileQuality,
	}

	h := router.Handlers{
		GameInfo:     handler.NewGameInfoHandler(gameInfo),
		PublicPuzzle: handler.NewPublicPuzzleHandler(puzzles),
		AdminAuth:    handler.NewAdminAuthHandler(adminUsers, cfg.JWTSecret, cfg.AccessTTLMin),
		AdminPuzzle:  handler.NewAdminPuzzleHandler(puzzles),
		AdminPoster:  handler.NewAdminPosterHandler(posters, cfg.PostersDir, cfg.MaxUploadMB, optimizer),
		Assets:       handler.NewAssetHandler(cfg.PostersDir, cfg.PublicDir),
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, h, cfg, rdb)
	router.RegisterAdmin(e, h, cfg, rdb)

	// The consumer retries the broker forever in the background; a missing
	// broker only costs the poster upload log.
	go func() {
		if err := queue.StartPosterConsumer(); err != nil {
			log.Printf("poster consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
