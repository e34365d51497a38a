package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vncsmyrnk/todo/internal/adapters/repository/postgres"
)

// Usage:
//
//	migrations [-dir path] up|down        apply every migration in order
//	migrations [-dir path] <name>         apply the single file matching name
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var dsn, dir string
	flag.StringVar(&dsn, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	flag.StringVar(&dir, "dir", filepath.Join(".", "internal", "adapters", "repository", "postgres", "migrations"), "Migrations directory")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("a migration name, or up/down, is required.")
	}
	if dsn == "" {
		log.Fatal("DATABASE_URL is required.")
	}
	target := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, dsn, postgres.PoolConfig{MaxOpenConns: 1})
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	var files []string
	switch target {
	case "up", "down":
		files, err = migrationFiles(dir, target)
	default:
		var f string
		f, err = migrationFilePath(dir, target)
		files = []string{f}
	}
	if err != nil {
		log.Fatal(err)
	}

	for _, f := range files {
		if err := execFile(ctx, db, filepath.Join(dir, f)); err != nil {
			log.Fatalf("Failed to execute SQL file %s: %v", f, err)
		}
		fmt.Printf("Migration %s executed successfully.\n", f)
	}
}

func execFile(ctx context.Context, db *sql.DB, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}

// migrationFiles lists the files for one direction. Down migrations run in
// reverse order.
func migrationFiles(dir, direction string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	suffix := "." + direction + ".sql"
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	if direction == "down" {
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s migrations found in %s", direction, dir)
	}
	return files, nil
}

func migrationFilePath(basePath string, migrationName string) (string, error) {
	regex, err := regexp.Compile(fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(migrationName)))
	if err != nil {
		return "", fmt.Errorf("invalid pattern: %w", err)
	}

	files, err := os.ReadDir(basePath)
	if err != nil {
		return "", fmt.Errorf("failed to read migrations directory: %w", err)
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}

		if regex.MatchString(f.Name()) {
			return f.Name(), nil
		}
	}

	return "", fmt.Errorf("migration file not found")
}
