package main

import (
	"os"
	_ "time/tzdata" // Event time zones must resolve on hosts without zoneinfo

	"github.com/yigit/clubhub/internal/pkg/logger"
	"github.com/yigit/clubhub/internal/server"
)

// @title ClubHub API
// @version 1.0
// @description API for university club management: club applications, memberships, events and announcements
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
