package main

import (
	"flag"

	"snakearena/internal/server"
)

func main() {
	addr := flag.String("addr", ":8080", "address to listen on (e.g., 127.0.0.1:8080)")
	arenaConfigPath := flag.String("config", "configs/arena.json", "path to arena tuning JSON")
	tickMs := flag.Int("tick-ms", 0, "override simulation tick interval in milliseconds")
	gridW := flag.Int("grid-w", 0, "override arena width in cells")
	gridH := flag.Int("grid-h", 0, "override arena height in cells")
	startLength := flag.Int("start-length", 0, "override snake start length")
	foodValue := flag.Int("food-value", 0, "override score per food cell")
	foodCount := flag.Int("food-count", 0, "override food cells kept on the board")
	gameSeconds := flag.Int("game-seconds", 0, "override round duration in seconds")
	boundary := flag.String("boundary", "", "override boundary policy (reset or wrap)")
	flag.Parse()

	cfg := server.DefaultAppConfig()
	cfg.ArenaConfigPath = *arenaConfigPath

	var overrides server.RuleOverrides
	if *tickMs > 0 {
		overrides.TickMs = tickMs
	}
	if *gridW > 0 {
		overrides.GridWidth = gridW
	}
	if *gridH > 0 {
		overrides.GridHeight = gridH
	}
	if *startLength > 0 {
		overrides.StartLength = startLength
	}
	if *foodValue > 0 {
		overrides.FoodValue = foodValue
	}
	if *foodCount > 0 {
		overrides.FoodCount = foodCount
	}
	if *gameSeconds > 0 {
		overrides.GameSeconds = gameSeconds
	}
	if *boundary != "" {
		overrides.Boundary = boundary
	}
	cfg.RuleOverrides = overrides

	server.StartApp(*addr, cfg)
}
