// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	attendancestore "github.com/dalemusser/chapterhub/internal/app/store/attendance"
	"github.com/dalemusser/chapterhub/internal/app/store/audit"
	chapterstore "github.com/dalemusser/chapterhub/internal/app/store/chapters"
	"github.com/dalemusser/chapterhub/internal/app/store/directory"
	documentstore "github.com/dalemusser/chapterhub/internal/app/store/documents"
	ledgerstore "github.com/dalemusser/chapterhub/internal/app/store/ledger"
	memberstore "github.com/dalemusser/chapterhub/internal/app/store/members"
	officerstore "github.com/dalemusser/chapterhub/internal/app/store/officers"
	"github.com/dalemusser/chapterhub/internal/app/store/sessions"
	templatestore "github.com/dalemusser/chapterhub/internal/app/store/templates"
)

const connectTimeout = 10 * time.Second

// ConnectDB opens the MongoDB client and, when configured, the Postgres
// member directory.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)
	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		Services:      &Services{},
	}

	if appCfg.DirectoryDSN != "" {
		dir, err := directory.Open(cctx, appCfg.DirectoryDSN)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return DBDeps{}, fmt.Errorf("member directory: %w", err)
		}
		deps.Directory = dir
		logger.Info("member directory enabled")
	}

	return deps, nil
}

// indexer is implemented by every store that owns a collection.
type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureSchema creates the indexes of every collection. The uniqueness
// guards on signatures, signed minutes and attendance live here, so
// startup fails rather than running without them.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase
	stores := []struct {
		name string
		s    indexer
	}{
		{"chapters", chapterstore.New(db)},
		{"members", memberstore.New(db)},
		{"officers", officerstore.New(db)},
		{"sessions", sessions.New(db)},
		{"attendance", attendancestore.New(db)},
		{"ledger", ledgerstore.New(db)},
		{"documents", documentstore.New(db, logger)},
		{"templates", templatestore.New(db)},
		{"audit", audit.New(db)},
	}
	for _, st := range stores {
		if err := st.s.EnsureIndexes(ctx); err != nil {
			logger.Error("ensure indexes failed", zap.String("store", st.name), zap.Error(err))
			return fmt.Errorf("ensure indexes %s: %w", st.name, err)
		}
	}
	logger.Info("schema ready", zap.Int("stores", len(stores)))
	return nil
}
