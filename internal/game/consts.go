package game

// Default arena tuning. Any of these can be overridden per server via the
// config file or flags, and boundary additionally per room at creation.
const (
	DefaultTickMs      = 100
	DefaultGridWidth   = 25
	DefaultGridHeight  = 25
	DefaultStartLength = 5
	DefaultFoodValue   = 5
	DefaultFoodCount   = 3
	DefaultGameSeconds = 180
)

// RoomMaxPlayers caps seats per room; spawn slots are quadrant-based.
const RoomMaxPlayers = 4

const roomInboxSize = 256
