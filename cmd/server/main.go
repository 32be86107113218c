package main

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"searchhub/internal/config"
	"searchhub/internal/domain/search"
	"searchhub/internal/infrastructure/engines"
	"searchhub/internal/interfaces/httpserver"
	"searchhub/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	log.Info().
		Str("http_port", cfg.HTTPPort).
		Str("log_level", cfg.LogLevel).
		Strs("engines", cfg.Engines).
		Msg("Starting SearchHub service")

	orchestrator := engines.NewOrchestrator(cfg.OrchestratorConfig())
	service := search.NewService(orchestrator)

	router := httpserver.New(service)

	addr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info().Str("address", addr).Msg("Server listening")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
