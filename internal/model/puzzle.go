package model

// Puzzle represents a single guessing-game unit: a clue pointing at two
// movies whose titles combine into one mashup answer. This struct
// corresponds to a row in the `puzzles` table.
//
// Fields:
//
//	ID       – primary key, assigned as current max+1 on insert.
//	Clue     – the riddle shown to the player.
//	Tagline  – fake tagline for the mashup movie.
//	Synopsis – fake synopsis for the mashup movie.
//	Credits  – fake cast/crew line for the mashup movie.
//	IsActive – gates visibility in the public game; inactive puzzles are
//	           still visible to admin tooling.
type Puzzle struct {
	ID       int64  // puzzles.id
	Clue     string // puzzles.clue
	Tagline  string // puzzles.tagline
	Synopsis string // puzzles.synopsis
	Credits  string // puzzles.credits
	IsActive bool   // puzzles.is_active
}

// Solution holds the answer for a puzzle. Exactly one row exists per
// puzzle. Corresponds to a row in the `solutions` table.
type Solution struct {
	ID          int64  // solutions.id
	PuzzleID    int64  // solutions.puzzle_id
	MashupTitle string // solutions.mashup_title
}
