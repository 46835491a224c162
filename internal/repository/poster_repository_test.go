package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cinemashers/cinemash/internal/model"
	"github.com/cinemashers/cinemash/internal/repository"
	"github.com/cinemashers/cinemash/internal/testutil"
)

func TestCreateWithActivationActivatesPuzzle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPosterRepo(db)

	testutil.CreateTestPuzzle(t, db, 1, "Needs Poster", false)

	p := &model.Poster{
		PuzzleID:         1,
		Filename:         "needs-poster.jpg",
		MovieTitle:       "Needs Poster",
		OriginalFilename: "needs-poster.jpg",
	}
	if err := repo.CreateWithActivation(context.Background(), p); err != nil {
		t.Fatalf("CreateWithActivation failed: %v", err)
	}
	if p.ID == 0 {
		t.Error("generated poster id not assigned back")
	}

	var active bool
	if err := db.QueryRow(`SELECT is_active FROM puzzles WHERE id = 1`).Scan(&active); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !active {
		t.Error("puzzle not activated by poster upload")
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM posters WHERE puzzle_id = 1 AND filename = 'needs-poster.jpg'`).Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("poster rows = %d, want exactly 1", count)
	}
}

func TestCreateWithActivationMissingPuzzle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPosterRepo(db)

	p := &model.Poster{PuzzleID: 42, Filename: "orphan.jpg"}
	err := repo.CreateWithActivation(context.Background(), p)
	if !errors.Is(err, repository.ErrPuzzleNotFound) {
		t.Fatalf("expected ErrPuzzleNotFound, got %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM posters`).Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("poster row leaked despite rollback: %d rows", count)
	}
}

func TestReassign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPosterRepo(db)

	testutil.CreateTestPuzzle(t, db, 1, "Source", true)
	testutil.CreateTestPuzzle(t, db, 2, "Target", true)
	posterID := testutil.CreateTestPoster(t, db, 1, "move-me.jpg")

	if err := repo.Reassign(context.Background(), posterID, 2); err != nil {
		t.Fatalf("Reassign failed: %v", err)
	}

	var got int64
	if err := db.QueryRow(`SELECT puzzle_id FROM posters WHERE id = ?`, posterID).Scan(&got); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if got != 2 {
		t.Errorf("poster puzzle_id = %d, want 2", got)
	}
}

func TestReassignNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPosterRepo(db)

	testutil.CreateTestPuzzle(t, db, 1, "Exists", true)

	if err := repo.Reassign(context.Background(), 99, 1); !errors.Is(err, repository.ErrPosterNotFound) {
		t.Errorf("expected ErrPosterNotFound, got %v", err)
	}

	posterID := testutil.CreateTestPoster(t, db, 1, "p.jpg")
	if err := repo.Reassign(context.Background(), posterID, 99); !errors.Is(err, repository.ErrPuzzleNotFound) {
		t.Errorf("expected ErrPuzzleNotFound, got %v", err)
	}
}

func TestListAllOrdersByPuzzleThenID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPosterRepo(db)

	testutil.CreateTestPuzzle(t, db, 1, "One", true)
	testutil.CreateTestPuzzle(t, db, 2, "Two", true)
	testutil.CreateTestPoster(t, db, 2, "second.jpg")
	testutil.CreateTestPoster(t, db, 1, "first.jpg")

	posters, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(posters) != 2 {
		t.Fatalf("posters = %d, want 2", len(posters))
	}
	if posters[0].PuzzleID != 1 || posters[1].PuzzleID != 2 {
		t.Errorf("posters not ordered by puzzle_id: %+v", posters)
	}
}
