package model

// Poster is an image asset linked to a puzzle. A puzzle may have zero or
// more posters; a puzzle with none is shown as "missing poster" in the
// admin view. Corresponds to a row in the `posters` table.
type Poster struct {
	ID               int64  // posters.id
	PuzzleID         int64  // posters.puzzle_id
	Filename         string // posters.filename, file under the posters directory
	MovieTitle       string // posters.movie_title, display title
	OriginalFilename string // posters.original_filename, name as uploaded
}
