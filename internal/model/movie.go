package model

// Movie is one of the two source movies of a puzzle, distinguished by
// MovieNumber (1 or 2). The IMDb URL points at a search-results page, not a
// direct title page. Corresponds to a row in the `movies` table.
type Movie struct {
	ID          int64  // movies.id
	PuzzleID    int64  // movies.puzzle_id
	MovieNumber int    // movies.movie_number, 1 or 2
	Title       string // movies.title
	Year        int    // movies.year
	IMDbURL     string // movies.imdb_url
}
