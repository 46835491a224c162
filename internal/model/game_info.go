package model

// GameInfo is the singleton row (id=1) describing the game itself. Rules is
// the decoded form of the JSON-encoded array stored in the `game_info.rules`
// column.
type GameInfo struct {
	ID          int64    // game_info.id, always 1
	Name        string   // game_info.name
	Description string   // game_info.description
	Rules       []string // game_info.rules, JSON-decoded
}
