package repository

import "errors"

// ErrPuzzleNotFound indicates that a puzzle row was not located in the DB.
// It is shared between the puzzle and poster repositories because poster
// operations validate their target puzzle.
var ErrPuzzleNotFound = errors.New("puzzle not found")
