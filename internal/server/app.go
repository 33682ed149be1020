package server

import (
	"log"
	"time"

	"snakearena/internal/game"
)

type AppConfig struct {
	ArenaConfigPath string
	RuleOverrides   RuleOverrides
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		ArenaConfigPath: "configs/arena.json",
	}
}

const (
	roomSweepInterval = 60 * time.Second
	roomMaxIdle       = 5 * time.Minute
)

func resolveRules(cfg AppConfig) game.Rules {
	rules := game.DefaultRules()
	loaded, err := loadRulesFromFile(cfg.ArenaConfigPath, rules)
	if err != nil {
		log.Printf("arena config: %v (using defaults)", err)
	} else {
		rules = loaded
	}
	return cfg.RuleOverrides.apply(rules)
}

func StartApp(addr string, cfg AppConfig) {
	rules := resolveRules(cfg)
	registry := game.NewRegistry(rules)

	// Periodic cleanup of rooms nobody is connected to.
	go func() {
		ticker := time.NewTicker(roomSweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			if n := registry.CleanupIdleRooms(roomMaxIdle); n > 0 {
				log.Printf("idle sweep removed %d room(s)", n)
			}
		}
	}()

	log.Printf("starting snake arena server on %s (%dx%d grid, %dms tick, %ds rounds, %s boundary)",
		addr, rules.GridWidth, rules.GridHeight, rules.TickMs, rules.GameSeconds, rules.Boundary)
	startServer(registry, addr)
}
