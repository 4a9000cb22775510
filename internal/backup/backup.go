// Package backup shells out to the PostgreSQL client tools to dump and
// restore databases. The binaries must be on PATH.
package backup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/studiowebux/pgman/internal/pgdb"
)

func dumpArgs(cfg *pgdb.Config, name, output string) []string {
	args := []string{
		"--dbname", name,
		"--file", output,
		"--host", cfg.Host,
		"--port", strconv.Itoa(cfg.Port),
	}
	if cfg.Username != "" {
		args = append(args, "--username", cfg.Username)
	}
	return args
}

func restoreArgs(cfg *pgdb.Config, name, input string) []string {
	args := []string{
		"--dbname", name,
		"--host", cfg.Host,
		"--port", strconv.Itoa(cfg.Port),
	}
	if cfg.Username != "" {
		args = append(args, "--username", cfg.Username)
	}
	return append(args, input)
}

func run(ctx context.Context, tool string, cfg *pgdb.Config, args []string) error {
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Env = os.Environ()
	if cfg.Password != "" {
		cmd.Env = append(cmd.Env, "PGPASSWORD="+cfg.Password)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", tool, err)
	}
	return nil
}

// Dump writes a dump of the named database to output using pg_dump.
func Dump(ctx context.Context, cfg *pgdb.Config, name, output string) error {
	return run(ctx, "pg_dump", cfg, dumpArgs(cfg, name, output))
}

// Restore loads a dump file into the named database using pg_restore.
// The database must already exist.
func Restore(ctx context.Context, cfg *pgdb.Config, name, input string) error {
	return run(ctx, "pg_restore", cfg, restoreArgs(cfg, name, input))
}
