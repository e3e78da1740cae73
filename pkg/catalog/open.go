package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"content-curator/pkg/config"
	"content-curator/pkg/db"
	"content-curator/pkg/logging"
)

// Open connects to the backend selected by cfg and returns a ready catalog.
// The caller closes it at the end of the unit of work.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	return OpenBackend(ctx, cfg.Catalog, logger)
}

// OpenBackend is Open for an explicit catalog section. Replication uses it to
// open a second backend next to the configured one.
func OpenBackend(ctx context.Context, c config.Catalog, logger *zap.Logger) (Store, error) {
	logger = logging.OrNop(logger)

	switch c.Backend {
	case config.BackendSQLite:
		client := db.NewSQLiteClient(c.SQLitePath)
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		logger.Debug("catalog opened", zap.String("backend", c.Backend), zap.String("path", c.SQLitePath))
		return newSQLStoreOrClose(ctx, client)

	case config.BackendPostgres:
		client := db.NewPostgresClient(db.PostgresConfig{DSN: c.PostgresDSN})
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		logger.Debug("catalog opened", zap.String("backend", c.Backend))
		return newSQLStoreOrClose(ctx, client)

	case config.BackendSupabase:
		client := db.NewSupabaseClient(db.SupabaseConfig{
			ConnectionString: c.PostgresDSN,
			SupabaseURL:      c.SupabaseURL,
			SupabaseKey:      c.SupabaseKey,
			Password:         c.SupabasePassword,
		})
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		store, err := newSQLStoreOrClose(ctx, client)
		if err != nil {
			return nil, err
		}
		if client.HasREST() {
			if count, err := client.CountRows("content"); err != nil {
				logger.Warn("supabase REST probe failed", zap.Error(err))
			} else {
				logger.Debug("catalog opened", zap.String("backend", c.Backend), zap.Int64("rows", count))
			}
		}
		return store, nil

	case config.BackendMongo:
		client, err := db.NewMongoClient(c.MongoURI, c.MongoDatabase, c.MongoCollection)
		if err != nil {
			return nil, err
		}
		if err := client.Connect(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		logger.Debug("catalog opened", zap.String("backend", c.Backend), zap.String("collection", c.MongoCollection))
		return NewMongoStore(client), nil

	default:
		return nil, fmt.Errorf("unknown catalog backend %q", c.Backend)
	}
}

func newSQLStoreOrClose(ctx context.Context, conn SQLConn) (Store, error) {
	store, err := NewSQLStore(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return store, nil
}
