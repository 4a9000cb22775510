// Package cli implements the non-interactive commands and the glue that
// turns a browsed snapshot into a restored database.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sahilm/fuzzy"

	"github.com/studiowebux/pgman/internal/backup"
	"github.com/studiowebux/pgman/internal/config"
	"github.com/studiowebux/pgman/internal/history"
	"github.com/studiowebux/pgman/internal/pgdb"
	"github.com/studiowebux/pgman/internal/s3store"
	"github.com/studiowebux/pgman/internal/tui"
)

// BrowseOptions contains options for the interactive browser
type BrowseOptions struct {
	Store   *s3store.Config
	DB      *pgdb.Config
	LogFile string
}

// Browse runs the snapshot browser and, when a snapshot was picked and a
// database name is set, restores it.
func Browse(opts BrowseOptions) error {
	logger, closeLog, err := newLogger(opts.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	result, err := tui.Run(opts.Store, opts.DB, logger)
	if err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	if result == nil {
		return nil
	}

	if opts.DB.DBName == "" {
		fmt.Printf("Downloaded %s to %s\n", result.SnapshotKey, result.ArtifactPath)
		fmt.Println("No database name set, skipping restore")
		return nil
	}

	fmt.Printf("Restoring %s into %s...\n", result.SnapshotKey, opts.DB.DBName)
	restoreErr := backup.Restore(context.Background(), opts.DB, opts.DB.DBName, result.ArtifactPath)
	recordHistory(result, opts.DB.DBName, restoreErr, logger)

	if restoreErr != nil {
		// Keep the artifact around so a failed restore can be retried
		fmt.Printf("Dump file kept at %s\n", result.ArtifactPath)
		return restoreErr
	}

	os.Remove(result.ArtifactPath)
	fmt.Println("Restore complete")
	return nil
}

// newLogger builds a debug logger writing to the given file, or a no-op
// logger when no file is set. The second return value closes the file.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, config.FilePermissions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { file.Close() }, nil
}

// recordHistory is best-effort; a failure to write history never fails the
// restore itself.
func recordHistory(result *tui.Result, dbName string, restoreErr error, logger *slog.Logger) {
	if err := config.Initialize(); err != nil {
		logger.Debug("failed to initialize config dir", "error", err)
		return
	}
	mgr, err := history.NewManager(config.DatabasePath)
	if err != nil {
		logger.Debug("failed to open history database", "error", err)
		return
	}
	defer mgr.Close()

	entry := history.Entry{
		SnapshotKey:  result.SnapshotKey,
		SizeBytes:    result.SizeBytes,
		DurationMs:   result.Duration.Milliseconds(),
		DatabaseName: dbName,
		Outcome:      "success",
	}
	if restoreErr != nil {
		entry.Outcome = "failed"
		entry.Message = restoreErr.Error()
	}
	if err := mgr.Save(entry); err != nil {
		logger.Debug("failed to save history entry", "error", err)
	}
}

// ListDatabases prints the non-template databases on the server.
func ListDatabases(cfg *pgdb.Config) error {
	ctx := context.Background()
	admin, err := pgdb.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer admin.Close()

	names, err := admin.ListDatabases(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func CreateDatabase(cfg *pgdb.Config, name string) error {
	ctx := context.Background()
	admin, err := pgdb.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer admin.Close()
	return admin.Create(ctx, name)
}

func DropDatabase(cfg *pgdb.Config, name string) error {
	ctx := context.Background()
	admin, err := pgdb.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer admin.Close()
	return admin.Drop(ctx, name)
}

func CloneDatabase(cfg *pgdb.Config, source, target, owner string) error {
	ctx := context.Background()
	admin, err := pgdb.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer admin.Close()
	return admin.Clone(ctx, source, target, owner)
}

func RenameDatabase(cfg *pgdb.Config, from, to string) error {
	ctx := context.Background()
	admin, err := pgdb.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer admin.Close()
	return admin.Rename(ctx, from, to)
}

func SetDatabaseOwner(cfg *pgdb.Config, name, owner string) error {
	ctx := context.Background()
	admin, err := pgdb.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer admin.Close()
	return admin.SetOwner(ctx, name, owner)
}

// DumpDatabase writes a dump of the named database to output.
func DumpDatabase(cfg *pgdb.Config, name, output string) error {
	if output == "" {
		output = name + ".dump"
	}
	if err := backup.Dump(context.Background(), cfg, name, output); err != nil {
		return err
	}
	fmt.Printf("Dumped %s to %s\n", name, output)
	return nil
}

// RestoreDatabase loads a local dump file into the named database.
func RestoreDatabase(cfg *pgdb.Config, name, input string) error {
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("cannot read dump file: %w", err)
	}
	if err := backup.Restore(context.Background(), cfg, name, input); err != nil {
		return err
	}
	fmt.Printf("Restored %s into %s\n", input, name)
	return nil
}

// HistoryOptions contains options for the history command
type HistoryOptions struct {
	Search string
	Clear  bool
	Delete int64
}

// History prints past restores, newest first.
func History(opts HistoryOptions) error {
	if err := config.Initialize(); err != nil {
		return err
	}
	mgr, err := history.NewManager(config.DatabasePath)
	if err != nil {
		return err
	}
	defer mgr.Close()

	if opts.Clear {
		return mgr.Clear()
	}
	if opts.Delete != 0 {
		return mgr.Delete(opts.Delete)
	}

	entries, err := mgr.Load()
	if err != nil {
		return err
	}
	entries = filterHistory(entries, opts.Search)

	if len(entries) == 0 {
		fmt.Println("No history entries")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%4d  %s  %-8s  %s -> %s  (%.2f MB, %dms)\n",
			e.ID, e.Timestamp, e.Outcome, e.SnapshotKey, e.DatabaseName,
			float64(e.SizeBytes)/(1024*1024), e.DurationMs)
		if e.Message != "" {
			fmt.Printf("          %s\n", e.Message)
		}
	}
	return nil
}

func filterHistory(entries []history.Entry, search string) []history.Entry {
	if search == "" {
		return entries
	}
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.SnapshotKey + " " + e.DatabaseName
	}
	matches := fuzzy.Find(search, keys)
	filtered := make([]history.Entry, 0, len(matches))
	for _, match := range matches {
		filtered = append(filtered, entries[match.Index])
	}
	return filtered
}
