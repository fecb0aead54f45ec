package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/mleong/mangobox-backend/pkg/config"
	"github.com/mleong/mangobox-backend/pkg/db"
	"github.com/mleong/mangobox-backend/pkg/logger"
	"github.com/mleong/mangobox-backend/pkg/migrate"
)

type cliArgs struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	args := parseArgs()
	if err := run(context.Background(), args); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", args.cmd, err)
		os.Exit(1)
	}
}

func parseArgs() cliArgs {
	var args cliArgs
	flag.StringVar(&args.cmd, "cmd", "up", "migration command: up|down|status|version|create|validate")
	flag.StringVar(&args.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&args.name, "name", "", "migration name (for create)")
	flag.StringVar(&args.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()
	return args
}

func run(ctx context.Context, args cliArgs) error {
	// create and validate are filesystem-only, no config or DB needed.
	switch args.cmd {
	case "create":
		if args.name == "" {
			return fmt.Errorf("missing -name")
		}
		path, err := migrate.CreateSQLMigration(args.dir, args.name)
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
		return nil

	case "validate":
		if err := migrate.ValidateDir(args.dir); err != nil {
			return err
		}
		fmt.Println("migration validation passed")
		return nil
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
		"cmd": args.cmd,
		"dir": args.dir,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("unwrap sql.DB: %w", err)
	}

	switch args.cmd {
	case "up", "down", "status":
		return migrate.Run(ctx, sqlDB, args.dir, args.cmd)

	case "version":
		if args.version == "" {
			return fmt.Errorf("missing -version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, args.dir, args.version)
	}

	return fmt.Errorf("unknown -cmd value %q", args.cmd)
}
