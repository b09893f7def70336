// Command seed loads a YAML fixture into the configured database.
//
//	seed [server flags] [-file seed/testdata/jobly.yaml]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/config"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/migrations"
	"github.com/Skryldev/jobly/seed"
)

func main() {
	file, rest := fixtureArg(os.Args[1:])

	cfg, err := config.Load(rest)
	if err != nil {
		fatalf("config: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	fx, err := seed.Load(file)
	if err != nil {
		fatalf("%v", err)
	}

	if cfg.AutoMigrate {
		if err := migrations.Up(cfg.MigrationURL()); err != nil {
			fatalf("%v", err)
		}
	}

	database, err := cfg.OpenDB(db.NewLogHook(db.LogHookConfig{
		Logger:             logger,
		SlowQueryThreshold: cfg.SlowQueryThreshold,
		LogArgs:            cfg.LogQueryArgs,
	}))
	if err != nil {
		fatalf("open database: %v", err)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	counts, err := seed.Apply(ctx, database, fx, auth.NewHasher(cfg.BcryptCost))
	if err != nil {
		fatalf("seed: %v", err)
	}
	slog.Info("seed: done", "file", file,
		"companies", counts.Companies, "jobs", counts.Jobs,
		"users", counts.Users, "applications", counts.Applications)
}

// fixtureArg pulls -file out of args; everything else goes to config.Load.
func fixtureArg(args []string) (string, []string) {
	file := "seed/testdata/jobly.yaml"
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := strings.Replace(args[i], "--", "-", 1)
		switch {
		case a == "-file" && i+1 < len(args):
			file = args[i+1]
			i++
		case strings.HasPrefix(a, "-file="):
			file = strings.TrimPrefix(a, "-file=")
		default:
			rest = append(rest, args[i])
		}
	}
	return file, rest
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
