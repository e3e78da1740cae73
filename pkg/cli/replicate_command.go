package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"content-curator/pkg/catalog"
	"content-curator/pkg/config"
	"content-curator/pkg/replication"
)

func newReplicateCommand(ctx *commandContext) *cobra.Command {
	var target config.Catalog
	var workers int

	cmd := &cobra.Command{
		Use:   "replicate",
		Short: "Copy every catalog record into another backend",
		Long: `Copy every record of the configured catalog into another backend.
Records already present in the target are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			source, cfg, logger, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}

			targetCfg, err := replicationTarget(cfg.Catalog, target)
			if err != nil {
				return err
			}

			dest, err := catalog.OpenBackend(cmd.Context(), targetCfg, logger)
			if err != nil {
				return fmt.Errorf("open target catalog: %w", err)
			}
			defer dest.Close()

			r, err := replication.NewReplicator(replication.Config{
				Source:  source,
				Target:  dest,
				Workers: workers,
				Logger:  logger,
			})
			if err != nil {
				return err
			}
			result, err := r.Replicate(cmd.Context())
			if err != nil {
				return err
			}

			if ctx.flags.json {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replicated %d record(s) to %s: %d inserted, %d already present\n",
				result.Processed, targetCfg.Backend, result.Inserted, result.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&target.Backend, "to-backend", "", "Target backend: sqlite, postgres, supabase or mongo")
	cmd.Flags().StringVar(&target.SQLitePath, "to-sqlite-path", "", "Target SQLite file")
	cmd.Flags().StringVar(&target.PostgresDSN, "to-dsn", "", "Target Postgres DSN (postgres, supabase)")
	cmd.Flags().StringVar(&target.MongoURI, "to-mongo-uri", "", "Target MongoDB URI")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent insert workers (default 5)")
	_ = cmd.MarkFlagRequired("to-backend")
	return cmd
}

// replicationTarget derives the target catalog from the configured one:
// connection settings from the config apply unless a flag overrides them.
func replicationTarget(current, flags config.Catalog) (config.Catalog, error) {
	target := current
	target.Backend = strings.ToLower(strings.TrimSpace(flags.Backend))

	if flags.SQLitePath != "" {
		expanded, err := config.ExpandPath(flags.SQLitePath)
		if err != nil {
			return config.Catalog{}, err
		}
		target.SQLitePath = expanded
	}
	if flags.PostgresDSN != "" {
		target.PostgresDSN = flags.PostgresDSN
	}
	if flags.MongoURI != "" {
		target.MongoURI = flags.MongoURI
	}

	if target.Backend == current.Backend && sameLocation(current, target) {
		return config.Catalog{}, errors.New("source and target are the same catalog")
	}
	return target, nil
}

func sameLocation(a, b config.Catalog) bool {
	switch a.Backend {
	case config.BackendSQLite:
		return a.SQLitePath == b.SQLitePath
	case config.BackendPostgres:
		return a.PostgresDSN == b.PostgresDSN
	case config.BackendSupabase:
		return a.PostgresDSN == b.PostgresDSN && a.SupabaseURL == b.SupabaseURL
	case config.BackendMongo:
		return a.MongoURI == b.MongoURI && a.MongoDatabase == b.MongoDatabase && a.MongoCollection == b.MongoCollection
	}
	return false
}
