package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"snakearena/internal/game"
)

type arenaConfig struct {
	TickMs      *int    `json:"tickMs"`
	GridWidth   *int    `json:"gridWidth"`
	GridHeight  *int    `json:"gridHeight"`
	StartLength *int    `json:"startLength"`
	FoodValue   *int    `json:"foodValue"`
	FoodCount   *int    `json:"foodCount"`
	GameSeconds *int    `json:"gameSeconds"`
	Boundary    *string `json:"boundary"`
}

type serverConfig struct {
	Arena *arenaConfig `json:"arena"`
}

// RuleOverrides represents optional command-line overrides for the arena
// tuning. They are applied after the config file.
type RuleOverrides struct {
	TickMs      *int
	GridWidth   *int
	GridHeight  *int
	StartLength *int
	FoodValue   *int
	FoodCount   *int
	GameSeconds *int
	Boundary    *string
}

func (o RuleOverrides) apply(base game.Rules) game.Rules {
	if o.TickMs != nil {
		base.TickMs = *o.TickMs
	}
	if o.GridWidth != nil {
		base.GridWidth = *o.GridWidth
	}
	if o.GridHeight != nil {
		base.GridHeight = *o.GridHeight
	}
	if o.StartLength != nil {
		base.StartLength = *o.StartLength
	}
	if o.FoodValue != nil {
		base.FoodValue = *o.FoodValue
	}
	if o.FoodCount != nil {
		base.FoodCount = *o.FoodCount
	}
	if o.GameSeconds != nil {
		base.GameSeconds = *o.GameSeconds
	}
	if o.Boundary != nil {
		base.Boundary = game.Boundary(*o.Boundary)
	}
	return game.SanitizeRules(base)
}

func mergeArenaConfig(base game.Rules, cfg *arenaConfig) game.Rules {
	if cfg == nil {
		return base
	}
	if cfg.TickMs != nil {
		base.TickMs = *cfg.TickMs
	}
	if cfg.GridWidth != nil {
		base.GridWidth = *cfg.GridWidth
	}
	if cfg.GridHeight != nil {
		base.GridHeight = *cfg.GridHeight
	}
	if cfg.StartLength != nil {
		base.StartLength = *cfg.StartLength
	}
	if cfg.FoodValue != nil {
		base.FoodValue = *cfg.FoodValue
	}
	if cfg.FoodCount != nil {
		base.FoodCount = *cfg.FoodCount
	}
	if cfg.GameSeconds != nil {
		base.GameSeconds = *cfg.GameSeconds
	}
	if cfg.Boundary != nil {
		base.Boundary = game.Boundary(*cfg.Boundary)
	}
	return game.SanitizeRules(base)
}

// loadRulesFromFile merges the optional tuning file over base. A missing
// file is not an error; defaults are used.
func loadRulesFromFile(path string, base game.Rules) (game.Rules, error) {
	if path == "" {
		return game.SanitizeRules(base), nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return game.SanitizeRules(base), nil
		}
		return game.SanitizeRules(base), fmt.Errorf("read arena config %q: %w", cleanPath, err)
	}
	var cfg serverConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return game.SanitizeRules(base), fmt.Errorf("parse arena config %q: %w", cleanPath, err)
	}
	return mergeArenaConfig(base, cfg.Arena), nil
}
