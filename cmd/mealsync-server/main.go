package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"mealsync/internal/auth"
	"mealsync/internal/config"
	"mealsync/internal/server"
)

func main() {
	mintUser := flag.String("mint-token", "", "print a dev bearer token for the given user id and exit")
	flag.Parse()

	cfg, err := config.NewServerFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *mintUser != "" {
		token, err := auth.MintToken([]byte(cfg.SecretKey), *mintUser, 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to mint token: %v", err)
		}
		fmt.Println(token)
		os.Exit(0)
	}

	database, err := server.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	app := server.NewApp(database, []byte(cfg.SecretKey))

	log.Printf("Starting mealsync-server on :%s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
