package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cinemashers/cinemash/internal/repository"
	"github.com/cinemashers/cinemash/internal/testutil"
)

func TestGetRandomActiveExcludesInactive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPuzzleRepo(db)

	testutil.CreateTestPuzzle(t, db, 1, "Active One", true)
	testutil.CreateTestPuzzle(t, db, 2, "Inactive", false)
	testutil.CreateTestPuzzle(t, db, 3, "Active Two", true)

	active := map[int64]bool{1: true, 3: true}
	for i := 0; i < 25; i++ {
		v, err := repo.GetRandomActive(context.Background())
		if err != nil {
			t.Fatalf("GetRandomActive failed: %v", err)
		}
		if !active[v.Puzzle.ID] {
			t.Fatalf("random returned inactive puzzle %d", v.Puzzle.ID)
		}
	}
}

func TestGetRandomActiveNoActivePuzzles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPuzzleRepo(db)

	testutil.CreateTestPuzzle(t, db, 1, "Inactive", false)

	_, err := repo.GetRandomActive(context.Background())
	if !errors.Is(err, repository.ErrPuzzleNotFound) {
		t.Fatalf("expected ErrPuzzleNotFound, got %v", err)
	}
}

func TestGetByIDIgnoresActiveFlag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPuzzleRepo(db)

	testutil.CreateTestPuzzle(t, db, 7, "Hidden Gem", false)

	v, err := repo.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if v.MashupTitle != "Hidden Gem" {
		t.Errorf("mashup title = %q, want %q", v.MashupTitle, "Hidden Gem")
	}
	if len(v.Movies) != 2 {
		t.Errorf("movies = %d, want 2", len(v.Movies))
	}
	if v.Movies[0].MovieNumber != 1 || v.Movies[1].MovieNumber != 2 {
		t.Errorf("movies not ordered by movie_number: %+v", v.Movies)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPuzzleRepo(db)

	_, err := repo.GetByID(context.Background(), 999)
	if !errors.Is(err, repository.ErrPuzzleNotFound) {
		t.Fatalf("expected ErrPuzzleNotFound, got %v", err)
	}
}

// TestCircularTraversal walks the active subset forward with wrap-around:
// after exactly N steps (N = number of active puzzles) the walk must be
// back at its starting id.
func TestCircularTraversal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPuzzleRepo(db)

	// Sparse active ids with inactive gaps in between.
	testutil.CreateTestPuzzle(t, db, 2, "A", true)
	testutil.CreateTestPuzzle(t, db, 3, "Gap", false)
	testutil.CreateTestPuzzle(t, db, 5, "B", true)
	testutil.CreateTestPuzzle(t, db, 9, "C", true)

	ctx := context.Background()
	next := func(id int64) int64 {
		v, err := repo.GetNextActive(ctx, id)
		if errors.Is(err, repository.ErrPuzzleNotFound) {
			v, err = repo.GetFirstActive(ctx)
		}
		if err != nil {
			t.Fatalf("traversal step from %d failed: %v", id, err)
		}
		return v.Puzzle.ID
	}

	cur := int64(5)
	for i := 0; i < 3; i++ {
		cur = next(cur)
	}
	if cur != 5 {
		t.Errorf("after 3 forward steps got id %d, want 5", cur)
	}

	prev := func(id int64) int64 {
		v, err := repo.GetPrevActive(ctx, id)
		if errors.Is(err, repository.ErrPuzzleNotFound) {
			v, err = repo.GetLastActive(ctx)
		}
		if err != nil {
			t.Fatalf("traversal step from %d failed: %v", id, err)
		}
		return v.Puzzle.ID
	}

	cur = int64(2)
	for i := 0; i < 3; i++ {
		cur = prev(cur)
	}
	if cur != 2 {
		t.Errorf("after 3 backward steps got id %d, want 2", cur)
	}

	// The gap puzzle must never appear in the walk.
	if v, err := repo.GetNextActive(ctx, 2); err != nil || v.Puzzle.ID != 5 {
		t.Errorf("next after 2 = %v, %v; want id 5", v, err)
	}
}

func TestUpdatePersistsAllFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPuzzleRepo(db)

	testutil.CreateTestPuzzle(t, db, 1, "Old Answer", true)

	err := repo.Update(context.Background(), 1, repository.PuzzleUpdate{
		Clue:        "new clue",
		Tagline:     "new tagline",
		Synopsis:    "new synopsis",
		Credits:     "new credits",
		IsActive:    false,
		MashupTitle: "New Answer",
		Movies: []repository.MovieUpdate{
			{MovieNumber: 1, Title: "First Movie", Year: 1997, IMDbURL: "https://imdb.test/1"},
			{MovieNumber: 2, Title: "Second Movie", Year: 1998, IMDbURL: "https://imdb.test/2"},
		},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	v, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if v.Puzzle.Clue != "new clue" || v.Puzzle.IsActive {
		t.Errorf("puzzle fields not persisted: %+v", v.Puzzle)
	}
	if v.MashupTitle != "New Answer" {
		t.Errorf("mashup title = %q, want %q", v.MashupTitle, "New Answer")
	}
	if v.Movies[0].Title != "First Movie" || v.Movies[0].Year != 1997 {
		t.Errorf("movie 1 not persisted: %+v", v.Movies[0])
	}
	if v.Movies[1].Title != "Second Movie" || v.Movies[1].Year != 1998 {
		t.Errorf("movie 2 not persisted: %+v", v.Movies[1])
	}
}

// TestUpdateAtomicOnMovieFailure enforces all-or-nothing: when one movie
// slot in the update does not exist, no field of the puzzle/solution/movies
// group may be persisted.
func TestUpdateAtomicOnMovieFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPuzzleRepo(db)

	testutil.CreateTestPuzzle(t, db, 1, "Original", true)

	err := repo.Update(context.Background(), 1, repository.PuzzleUpdate{
		Clue:        "should not persist",
		MashupTitle: "Should Not Persist",
		IsActive:    true,
		Movies: []repository.MovieUpdate{
			{MovieNumber: 1, Title: "Persisted?", Year: 2000},
			{MovieNumber: 3, Title: "No Such Slot", Year: 2000},
		},
	})
	if !errors.Is(err, repository.ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}

	v, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if v.Puzzle.Clue == "should not persist" {
		t.Error("puzzle update leaked despite rollback")
	}
	if v.MashupTitle != "Original" {
		t.Errorf("solution update leaked: %q", v.MashupTitle)
	}
	if v.Movies[0].Title == "Persisted?" {
		t.Error("movie update leaked despite rollback")
	}
}

func TestUpdateMissingPuzzle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPuzzleRepo(db)

	err := repo.Update(context.Background(), 42, repository.PuzzleUpdate{Clue: "x"})
	if !errors.Is(err, repository.ErrPuzzleNotFound) {
		t.Fatalf("expected ErrPuzzleNotFound, got %v", err)
	}
}

func TestCreateAssignsMaxPlusOne(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPuzzleRepo(db)

	testutil.CreateTestPuzzle(t, db, 1, "First", true)
	testutil.CreateTestPuzzle(t, db, 7, "Sparse", true)

	id, err := repo.Create(context.Background(), repository.NewPuzzle{
		Clue:        "a prison plane meets the president's plane",
		MashupTitle: "Con Air Force One",
		Movie1:      repository.MovieUpdate{Title: "Con Air", Year: 1997},
		Movie2:      repository.MovieUpdate{Title: "Air Force One", Year: 1997},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id != 8 {
		t.Errorf("assigned id = %d, want 8 (max+1)", id)
	}

	v, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if v.Puzzle.IsActive {
		t.Error("new puzzle must start inactive")
	}
	if v.MashupTitle != "Con Air Force One" {
		t.Errorf("mashup title = %q", v.MashupTitle)
	}
	if len(v.Movies) != 2 || v.Movies[0].Title != "Con Air" || v.Movies[1].Title != "Air Force One" {
		t.Errorf("movies not created correctly: %+v", v.Movies)
	}
}

func TestCreateOnEmptyDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPuzzleRepo(db)

	id, err := repo.Create(context.Background(), repository.NewPuzzle{
		Clue:        "c",
		MashupTitle: "M",
		Movie1:      repository.MovieUpdate{Title: "A"},
		Movie2:      repository.MovieUpdate{Title: "B"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}
}

func TestListForAdminDerivesHasPoster(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPuzzleRepo(db)

	testutil.CreateTestPuzzle(t, db, 1, "With Poster", true)
	testutil.CreateTestPuzzle(t, db, 2, "Without Poster", false)
	testutil.CreateTestPoster(t, db, 1, "one.jpg")

	rows, err := repo.ListForAdmin(context.Background())
	if err != nil {
		t.Fatalf("ListForAdmin failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (inactive puzzles must be listed)", len(rows))
	}
	if !rows[0].HasPoster {
		t.Error("puzzle 1 should have has_poster=true")
	}
	if rows[1].HasPoster {
		t.Error("puzzle 2 should have has_poster=false")
	}
}

func TestGetDetailForAdminListsAllPosters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPuzzleRepo(db)

	testutil.CreateTestPuzzle(t, db, 1, "Detail", true)
	testutil.CreateTestPoster(t, db, 1, "a.jpg")
	testutil.CreateTestPoster(t, db, 1, "b.jpg")

	d, err := repo.GetDetailForAdmin(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetDetailForAdmin failed: %v", err)
	}
	if len(d.Movies) != 2 {
		t.Errorf("movies = %d, want 2", len(d.Movies))
	}
	if len(d.Posters) != 2 {
		t.Errorf("posters = %d, want 2 (detail must list every poster)", len(d.Posters))
	}
}

func TestVerifyIntegrity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPuzzleRepo(db)

	testutil.CreateTestPuzzle(t, db, 1, "Consistent", true)

	issues, err := repo.VerifyIntegrity(context.Background())
	if err != nil {
		t.Fatalf("VerifyIntegrity failed: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}

	// Break the invariant: remove one movie.
	if _, err := db.Exec(`DELETE FROM movies WHERE puzzle_id = 1 AND movie_number = 2`); err != nil {
		t.Fatalf("failed to delete movie: %v", err)
	}

	issues, err = repo.VerifyIntegrity(context.Background())
	if err != nil {
		t.Fatalf("VerifyIntegrity failed: %v", err)
	}
	if len(issues) != 1 || issues[0].PuzzleID != 1 {
		t.Fatalf("expected one issue for puzzle 1, got %+v", issues)
	}
	if issues[0].Movies != 1 {
		t.Errorf("issue movie count = %d, want 1", issues[0].Movies)
	}
}
