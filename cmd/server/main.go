package main

import (
	"context"
	"log"

	"github.com/avoronov/periodvault/internal/server"
	"github.com/avoronov/periodvault/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("error initializing app: %v", err)
	}

	app.Run(context.Background())
}
