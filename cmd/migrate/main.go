package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jtrade/backend/internal/infrastructure/config"
	"github.com/jtrade/backend/internal/infrastructure/logger"
	"github.com/jtrade/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const usage = `Settlement read-model migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up               apply all pending migrations
  down             roll back all migrations
  step <n>         apply n migrations (negative rolls back)
  version          print the current schema version
  force <version>  overwrite the recorded version (recovery only)
  create <name>    create a new up/down migration pair
  list             list the migration pairs on disk

Flags:
  -path       migrations directory (default: ./migrations)
  -log-level  debug, info, warn, error (default: info)
`

func main() {
	var (
		dir      string
		logLevel string
	)
	flag.StringVar(&dir, "path", "migrations", "migrations directory")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if dir, err = filepath.Abs(dir); err != nil {
		log.Fatal("failed to resolve migrations directory", zap.Error(err))
	}

	// create and list never touch the database
	switch command := args[0]; command {
	case "create":
		if len(args) < 2 {
			log.Fatal("usage: migrate create <name>")
		}
		pair, err := migration.Create(dir, args[1])
		if err != nil {
			log.Fatal("failed to create migration pair", zap.Error(err))
		}
		log.Info("migration pair created",
			zap.String("version", pair.Version),
			zap.String("up", pair.UpPath),
			zap.String("down", pair.DownPath),
		)

	case "list":
		names, err := migration.List(dir)
		if err != nil {
			log.Fatal("failed to list migrations", zap.Error(err))
		}
		for _, name := range names {
			fmt.Println(name)
		}

	default:
		runAgainstDatabase(command, args[1:], dir, log)
	}
}

func runAgainstDatabase(command string, args []string, dir string, log *zap.Logger) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		log.Fatal("failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "step":
		err = m.Steps(intArg(args, log, "usage: migrate step <n>"))
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil {
			log.Fatal("failed to read version", zap.Error(verr))
		}
		log.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	case "force":
		err = m.Force(intArg(args, log, "usage: migrate force <version>"))
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("migration failed", zap.String("command", command), zap.Error(err))
	}
}

func intArg(args []string, log *zap.Logger, usageHint string) int {
	if len(args) < 1 {
		log.Fatal(usageHint)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		log.Fatal("numeric argument expected", zap.String("got", args[0]))
	}
	return n
}
