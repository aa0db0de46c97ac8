// Command sgqctl imports and exports quality records from the command line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/sgq/internal/config"
	"github.com/JonMunkholm/sgq/internal/core"
	_ "github.com/JonMunkholm/sgq/internal/core/entities" // Register all entities
	"github.com/JonMunkholm/sgq/internal/logging"
	"github.com/JonMunkholm/sgq/internal/store/memstore"
	"github.com/JonMunkholm/sgq/internal/store/postgres"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	logLevel string
	user     string
	memory   bool
	workers  int
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "sgqctl",
		Short: "Import and export SGQ quality records",
		Long: `sgqctl reads spreadsheets into the SGQ store and writes workbooks back out.

Connection settings come from the environment (DATABASE_URL, IMPORT_*),
optionally loaded from a .env file in the working directory. With --memory
the command runs against an empty in-memory store, which is useful for
checking a file before importing it for real.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), opts.logLevel, "text"))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.user, "user", "", "User id recorded as created_by (default: system)")
	cmd.PersistentFlags().BoolVar(&opts.memory, "memory", false, "Use an in-memory store instead of PostgreSQL")
	cmd.PersistentFlags().IntVar(&opts.workers, "workers", 0, "Rows written concurrently (default from IMPORT_WORKERS)")

	cmd.AddCommand(newEntitiesCmd())
	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	return cmd
}

// withIdentity attaches the --user identity to ctx.
func (o *globalOptions) withIdentity(ctx context.Context) context.Context {
	if o.user == "" {
		return ctx
	}
	return core.ContextWithIdentity(ctx, core.Identity{UserID: o.user, Name: o.user})
}

// openService builds a Service over the selected store. The returned
// func releases the store.
func (o *globalOptions) openService(ctx context.Context) (*core.Service, func(), error) {
	if o.memory {
		return core.NewService(memstore.New(), core.Options{Workers: o.workers}), func() {}, nil
	}

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	store := postgres.New(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	workers := cfg.Import.Workers
	if o.workers > 0 {
		workers = o.workers
	}
	svc := core.NewService(store, core.Options{
		Workers:       workers,
		MaxConcurrent: cfg.Import.MaxConcurrent,
		MaxWait:       cfg.Import.MaxWaitTime,
		MaxReasons:    cfg.Import.MaxReasons,
	})
	return svc, pool.Close, nil
}
