// @title			Planning Poker API
// @version		1.0
// @description	Room management for the planning poker server. Voting happens over the /ws websocket.
// @BasePath		/
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"planningpoker/internal/config"
	"planningpoker/internal/database/db_client"
	"planningpoker/internal/http/http_server"
	"planningpoker/internal/reaper"
	"planningpoker/internal/redis/redis_client"
	"planningpoker/internal/roomstore"
	"planningpoker/internal/services/rooms"
	"planningpoker/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer func() { _ = Log.Sync() }()
	zap.ReplaceGlobals(Log)

	var err error
	var cfg *config.Config
	var roomService rooms.IRoomService

	// 1. Load configuration
	cfg, err = config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if !cfg.LogDevelopment {
		if prod, err := zap.NewProduction(); err == nil {
			Log = prod
			zap.ReplaceGlobals(Log)
		}
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Room store
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		Log.Fatal("Failed to open room store", zap.String("store", cfg.RoomStore), zap.Error(err))
	}
	defer closeStore()
	Log.Info("Room store ready", zap.String("store", cfg.RoomStore))

	// 4. WebSockets hub; it is also the broadcaster the service notifies
	hub := ws.NewHub()

	// 5. Initialize the services
	roomService = rooms.NewRoomService(store, hub, rooms.Settings{
		OwnerAbsenceTTL: cfg.OwnerAbsenceTTL,
		EmptyRoomTTL:    cfg.EmptyRoomTTL,
	})

	// 6. Background: empty room reaper
	go reaper.Run(ctx, roomService, cfg.ReaperInterval)

	// 7. Initialize the WS server
	wsSrv := ws.NewWsServer(hub, roomService)

	// 8. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, hub, roomService)
	disposed := make(chan struct{})
	go func() {
		defer close(disposed)
		<-ctx.Done()
		_ = httpServer.Dispose()
	}()
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
	<-disposed
	Log.Info("Server stopped")
}

// openStore builds the configured room store and returns its cleanup.
func openStore(ctx context.Context, cfg *config.Config) (roomstore.Store, func(), error) {
	noop := func() {}

	switch cfg.RoomStore {
	case config.StoreMemory:
		return roomstore.NewMemoryStore(), noop, nil

	case config.StoreRedis:
		rdc, err := redis_client.NewRedisClient(redis_client.Options{
			Host:     cfg.RedisHost,
			Port:     int(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return roomstore.NewRedisStore(rdc), func() { _ = rdc.Close() }, nil

	case config.StorePostgres:
		pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
		if err != nil {
			return nil, nil, err
		}
		if err := db_client.EnsureSchema(ctx, pgDb, roomstore.Schema); err != nil {
			_ = pgDb.Close()
			return nil, nil, err
		}
		return roomstore.NewPostgresStore(pgDb), func() { _ = pgDb.Close() }, nil

	case config.StoreBadger:
		bdb, err := roomstore.OpenBadger(cfg.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		return roomstore.NewBadgerStore(bdb), func() { _ = bdb.Close() }, nil

	default:
		fs, err := roomstore.NewFileStore(cfg.RoomsDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, noop, nil
	}
}
