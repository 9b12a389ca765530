package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/communitycms/media-service/config"
	"github.com/communitycms/media-service/internal/app"
)

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Load .env error: %s", err)
		}
	}

	// Configuration
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}

	// Run
	app.Run(cfg)
}
