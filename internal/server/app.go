// Package server initializes and runs the main application server: database
// and blob backends, the retention sweep, the live hub, the AI proxy and the
// HTTP endpoint, with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/skomarov/boardkeeper/internal/logging"
	"github.com/skomarov/boardkeeper/internal/server/ai"
	"github.com/skomarov/boardkeeper/internal/server/config"
	"github.com/skomarov/boardkeeper/internal/server/dbopen"
	"github.com/skomarov/boardkeeper/internal/server/httpapi"
	"github.com/skomarov/boardkeeper/internal/server/live"
	"github.com/skomarov/boardkeeper/internal/server/repositories/blobs"
	"github.com/skomarov/boardkeeper/internal/server/repositories/repomanager"
	"github.com/skomarov/boardkeeper/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	hub     *live.Hub
	sweeper *services.Sweeper
	server  *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := dbopen.Open(ctx, c.DatabaseDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := newBlobStore(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	roomService := services.NewRoomService(db, rm)
	assetService := services.NewAssetService(store)
	snapshotService := services.NewSnapshotService(store)

	sweeper := services.NewSweeper(db, rm, store, services.RetentionConfig{
		Interval:    c.RetentionInterval,
		RoomTTL:     c.RoomTTL,
		AssetTTL:    c.AssetTTL,
		SnapshotTTL: c.SnapshotTTL,
		OrphanGrace: c.OrphanGrace,
	}, logger)

	hub := live.NewHub(logger)

	provider := ai.NewOpenAIProvider(c.AIAPIKey, c.AIBaseURL, c.AIModel)
	proxy := ai.NewProxy(provider, ai.NewDailyQuota(c.AIDailyQuota), logger)

	handler := httpapi.NewHandler(
		roomService,
		assetService,
		snapshotService,
		proxy,
		live.NewHandler(hub, logger),
		logger,
	)

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		hub:     hub,
		sweeper: sweeper,
		server:  httpapi.NewServer(c.EndpointAddrHTTP, handler, logger),
	}, nil
}

// newBlobStore selects the blob backend: S3 when an endpoint is configured,
// in-memory otherwise (dev mode, contents lost on restart).
func newBlobStore(ctx context.Context, c *config.Config, logger logging.Logger) (blobs.Store, error) {
	if c.S3BaseEndpoint == "" {
		logger.Warn(ctx, "no S3 endpoint configured, using in-memory blob store")
		return blobs.NewMemoryStore(), nil
	}
	return blobs.NewS3Store(ctx, blobs.S3Config{
		RootUser:     c.S3RootUser,
		RootPassword: c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	app.hub.Start()
	defer app.hub.Shutdown()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database failed", "error", err.Error())
	}
}
