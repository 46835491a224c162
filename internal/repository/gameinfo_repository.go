// This file defines the game_info repository. The table holds a single row
// (id=1) whose rules column stores a JSON-encoded array of strings; the
// repository decodes it so callers only ever see the structured form.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cinemashers/cinemash/internal/model"
)

// ErrGameInfoMissing indicates that the game_info singleton row is absent.
// The seeding path creates it at startup, so hitting this at request time
// means the database was tampered with.
var ErrGameInfoMissing = errors.New("game info not found")

// GameInfoRepo manages the game_info singleton.
type GameInfoRepo struct {
	db *sql.DB
}

// NewGameInfoRepo constructs a GameInfoRepo with the given DB handle.
func NewGameInfoRepo(db *sql.DB) *GameInfoRepo {
	return &GameInfoRepo{db: db}
}

// Get fetches the singleton row and decodes the rules JSON. A malformed
// rules column is surfaced as an error rather than silently dropped; the
// read path has no way to repair it.
func (r *GameInfoRepo) Get(ctx context.Context) (*model.GameInfo, error) {
	const q = `SELECT id, name, description, rules FROM game_info WHERE id = 1`
	var gi model.GameInfo
	var description, rules sql.NullString
	err := r.db.QueryRowContext(ctx, q).Scan(&gi.ID, &gi.Name, &description, &rules)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameInfoMissing
		}
		return nil, err
	}
	gi.Description = description.String
	gi.Rules = []string{}
	if rules.String != "" {
		if err := json.Unmarshal([]byte(rules.String), &gi.Rules); err != nil {
			return nil, fmt.Errorf("decode game rules: %w", err)
		}
	}
	return &gi, nil
}
