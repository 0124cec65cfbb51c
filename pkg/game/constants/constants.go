package constants

const (

	// MinPlayers is the smallest roster a local session supports
	MinPlayers int = 2
	// MaxPlayers is the largest roster a session supports
	MaxPlayers int = 8
	// MinOnlinePlayers is the smallest roster a shared game may be created with
	MinOnlinePlayers int = 4
	// DefaultPlayers is the roster size of a fresh local session
	DefaultPlayers int = 4

	// SlotsPerLane is the number of main-track slots per player lane
	SlotsPerLane int = 18
	// PegsPerPlayer is the number of pegs each player owns
	PegsPerPlayer int = 5
	// SafeEntryOffset is the distance from a player's start slot to the
	// main-track slot adjacent to their safe-lane entrance
	SafeEntryOffset int = 3

	// DefaultExactHome is whether a peg must land exactly on its
	// terminal cell to finish
	DefaultExactHome bool = true
)

// PlayerDefault is one entry of the fixed roster palette.
type PlayerDefault struct {
	Name  string
	Color string
}

// Palette is the ordered roster palette. Seat i always gets Palette[i].
var Palette = [MaxPlayers]PlayerDefault{
	{Name: "Red", Color: "#ef4444"},
	{Name: "Blue", Color: "#3b82f6"},
	{Name: "Green", Color: "#10b981"},
	{Name: "Purple", Color: "#a855f7"},
	{Name: "Orange", Color: "#f59e0b"},
	{Name: "Yellow", Color: "#eab308"},
	{Name: "Pink", Color: "#ec4899"},
	{Name: "Cyan", Color: "#06b6d4"},
}
