package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/vncsmyrnk/idolvote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/idolvote/internal/config"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

// Usage:
//
//	migrations             applies every *.up.sql file
//	migrations <name>      applies the file ending in <name>.sql, e.g. create_voting_tables.down
func main() {
	dir := flag.String("dir", postgres.MigrationsDir, "Migrations directory")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		utils.Logger.Debug("No .env file found")
	}
	utils.InitLogger("idolvote-migrations")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = config.DBURL(
			os.Getenv("POSTGRES_USER"),
			os.Getenv("POSTGRES_PASSWORD"),
			os.Getenv("POSTGRES_HOST"),
			os.Getenv("POSTGRES_PORT"),
			os.Getenv("POSTGRES_DB"),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, dsn)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if name := flag.Arg(0); name != "" {
		err = postgres.ApplyMigration(ctx, db, *dir, name)
	} else {
		err = postgres.ApplyMigrations(ctx, db, *dir)
	}
	if err != nil {
		utils.Logger.WithError(err).Fatal("Migration failed")
	}

	utils.Logger.Info("Migrations executed successfully.")
}
