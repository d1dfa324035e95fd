package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"tortillometro/internal/db"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const usage = "usage: migrate up | list"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded, using process environment: %v", err)
	}

	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	migrations, err := db.LoadMigrations()
	if err != nil {
		logger.Fatal(err)
	}

	switch os.Args[1] {
	case "list":
		for _, m := range migrations {
			fmt.Println(m.Version)
		}
	case "up":
		addr := os.Getenv("DB_ADDR")
		if addr == "" {
			logger.Fatal("DB_ADDR is required")
		}

		conn, err := sql.Open("postgres", addr)
		if err != nil {
			logger.Fatal(err)
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		applied, err := db.Migrate(ctx, conn, migrations)
		if err != nil {
			logger.Fatalw("migration failed", "applied", applied, "error", err)
		}
		if len(applied) == 0 {
			logger.Info("schema is up to date")
			return
		}
		logger.Infow("migrations applied", "versions", applied)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}
