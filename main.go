// main.go

package main

import (
	"log"

	"github.com/joho/godotenv"

	"eshop-backend/internal/app"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg := app.LoadConfig()

	srv, cleanup, err := app.NewServer(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer cleanup()

	log.Printf("listening on :%s (api at %s)", cfg.Port, cfg.APIPrefix)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Println(err)
	}
}
