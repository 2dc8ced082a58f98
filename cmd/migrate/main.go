package main

import (
	"context"
	"flag"
	"log"

	"dayplanner/internal/config"
	"dayplanner/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "", "config file (default $DAYPLANNER_CONFIG or "+config.DefaultPath+")")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.LoadFile(config.Path(*configPath))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := store.OpenAndMigrate(context.Background(), cfg.Database)
	if err != nil {
		log.Fatalf("Error running migrations: %v", err)
	}
	defer st.Close()

	log.Println("Migration completed successfully")
}
