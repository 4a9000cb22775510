package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/studiowebux/pgman/internal/cli"
	"github.com/studiowebux/pgman/internal/config"
	"github.com/studiowebux/pgman/internal/pgdb"
	"github.com/studiowebux/pgman/internal/s3store"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pgman",
	Short: "PostgreSQL S3 backup manager",
	Long: `pgman browses database backup snapshots stored in S3-compatible object
storage and restores them into PostgreSQL.

Run without arguments to start the interactive browser. Settings can be
provided via flags, environment variables, or edited inside the browser.

Examples:
  pgman                                # Start the interactive browser
  pgman list                           # List databases on the server
  pgman create staging                 # Create a database
  pgman clone prod prod-copy           # Copy a database
  pgman dump app -o app.dump           # Dump a database to a local file
  pgman restore app app.dump           # Load a local dump file
  pgman history --search prod          # Show past restores`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse()
	},
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse snapshots interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse()
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List databases on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ListDatabases(pgConfig())
	},
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.CreateDatabase(pgConfig(), args[0])
	},
}

var dropCmd = &cobra.Command{
	Use:   "drop <name>",
	Short: "Drop a database, terminating active connections",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.DropDatabase(pgConfig(), args[0])
	},
}

var cloneCmd = &cobra.Command{
	Use:   "clone <source> <target>",
	Short: "Copy a database using it as a template",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.CloneDatabase(pgConfig(), args[0], args[1], flagOwner)
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <from> <to>",
	Short: "Rename a database",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RenameDatabase(pgConfig(), args[0], args[1])
	},
}

var setOwnerCmd = &cobra.Command{
	Use:   "set-owner <name> <owner>",
	Short: "Change the owner of a database",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.SetDatabaseOwner(pgConfig(), args[0], args[1])
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump <name>",
	Short: "Dump a database to a local file with pg_dump",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.DumpDatabase(pgConfig(), args[0], flagDumpOutput)
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <name> <file>",
	Short: "Load a local dump file with pg_restore",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RestoreDatabase(pgConfig(), args[0], args[1])
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past restores",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.History(cli.HistoryOptions{
			Search: flagHistorySearch,
			Clear:  flagHistoryClear,
			Delete: flagHistoryDelete,
		})
	},
}

// PostgreSQL connection flags, shared by all commands
var (
	flagPGHost     string
	flagPGPort     int
	flagPGUser     string
	flagPGPassword string
	flagPGSSL      bool
	flagPGDatabase string
)

// S3 flags for the browser
var (
	flagBucket    string
	flagRegion    string
	flagPrefix    string
	flagEndpoint  string
	flagAccessKey string
	flagSecretKey string
	flagPathStyle bool
)

var (
	flagLogFile       string
	flagOwner         string
	flagDumpOutput    string
	flagHistorySearch string
	flagHistoryClear  bool
	flagHistoryDelete int64
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagPGHost, "host", config.EnvOr("PGHOST", ""), "PostgreSQL host")
	pf.IntVar(&flagPGPort, "port", envInt("PGPORT", 5432), "PostgreSQL port")
	pf.StringVar(&flagPGUser, "username", config.EnvOr("PGUSER", ""), "PostgreSQL username")
	pf.StringVar(&flagPGPassword, "password", config.EnvOr("PGPASSWORD", ""), "PostgreSQL password")
	pf.BoolVar(&flagPGSSL, "ssl", envBool("PGMAN_SSL"), "Require TLS for PostgreSQL connections")
	pf.StringVar(&flagPGDatabase, "dbname", config.EnvOr("PGDATABASE", ""), "Target database name")
	pf.StringVar(&flagLogFile, "log-file", "", "Write debug logs to this file")

	for _, cmd := range []*cobra.Command{rootCmd, browseCmd} {
		f := cmd.Flags()
		f.StringVar(&flagBucket, "bucket", config.EnvOr("PGMAN_S3_BUCKET", ""), "S3 bucket name")
		f.StringVar(&flagRegion, "region", config.EnvOr("AWS_REGION", ""), "S3 region")
		f.StringVar(&flagPrefix, "prefix", config.EnvOr("PGMAN_S3_PREFIX", ""), "Key prefix to list")
		f.StringVar(&flagEndpoint, "endpoint-url", config.EnvOr("AWS_ENDPOINT_URL", ""), "S3 endpoint URL")
		f.StringVar(&flagAccessKey, "access-key-id", config.EnvOr("AWS_ACCESS_KEY_ID", ""), "S3 access key ID")
		f.StringVar(&flagSecretKey, "secret-access-key", config.EnvOr("AWS_SECRET_ACCESS_KEY", ""), "S3 secret access key")
		f.BoolVar(&flagPathStyle, "path-style", envBool("PGMAN_S3_PATH_STYLE"), "Use path-style S3 addressing")
	}

	cloneCmd.Flags().StringVar(&flagOwner, "owner", "", "Owner for the new database")
	dumpCmd.Flags().StringVarP(&flagDumpOutput, "output", "o", "", "Output file (defaults to <name>.dump)")
	historyCmd.Flags().StringVar(&flagHistorySearch, "search", "", "Fuzzy filter entries")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete all history entries")
	historyCmd.Flags().Int64Var(&flagHistoryDelete, "delete", 0, "Delete the entry with this id")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(cloneCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(setOwnerCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(historyCmd)
}

func pgConfig() *pgdb.Config {
	return &pgdb.Config{
		Host:     flagPGHost,
		Port:     flagPGPort,
		Username: flagPGUser,
		Password: flagPGPassword,
		UseSSL:   flagPGSSL,
		DBName:   flagPGDatabase,
	}
}

func storeConfig() *s3store.Config {
	return &s3store.Config{
		Bucket:          flagBucket,
		Region:          flagRegion,
		Prefix:          flagPrefix,
		EndpointURL:     flagEndpoint,
		AccessKeyID:     flagAccessKey,
		SecretAccessKey: flagSecretKey,
		PathStyle:       flagPathStyle,
	}
}

func runBrowse() error {
	return cli.Browse(cli.BrowseOptions{
		Store:   storeConfig(),
		DB:      pgConfig(),
		LogFile: flagLogFile,
	})
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string) bool {
	return os.Getenv(key) == "true"
}
