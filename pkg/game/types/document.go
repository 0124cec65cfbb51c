package types

// Rules are fixed for the lifetime of a game.
type Rules struct {
	SlotsPerLane int  `json:"slotsPerLane"`
	ExactHome    bool `json:"exactHome"`
}

type GameStatus string

const (
	GameStatusWaiting  GameStatus = "waiting"
	GameStatusPlaying  GameStatus = "playing"
	GameStatusFinished GameStatus = "finished"
)

// GameDocument is the persisted shape at games/{id}. Timestamps are
// written as server-timestamp placeholders and read back as epoch
// millis.
type GameDocument struct {
	Rules      Rules     `json:"rules"`
	TotalSlots int       `json:"totalSlots"`
	Players    []*Player `json:"players"`
	// CurrentTurn is carried for future turn mechanics but unused here.
	CurrentTurn  int             `json:"currentTurn"`
	CreatedAt    int64           `json:"createdAt"`
	LastUpdated  int64           `json:"lastUpdated"`
	Status       GameStatus      `json:"status"`
	Participants map[string]bool `json:"participants"`
	MaxPlayers   int             `json:"maxPlayers"`
}

// MoveLogEntry is the append-only audit record written at
// games/{id}/moves/{autoKey} alongside every successful move. The core
// never reads these back. Timestamp holds the store's server-timestamp
// placeholder on the write path and epoch millis when read.
type MoveLogEntry struct {
	PlayerID    string      `json:"playerId"`
	PegID       string      `json:"pegId"`
	NewPosition PegPosition `json:"newPosition"`
	Timestamp   interface{} `json:"timestamp"`
}

// PegRef identifies one peg of one player.
type PegRef struct {
	PlayerID string `json:"playerId"`
	PegID    string `json:"pegId"`
}
