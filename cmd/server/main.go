package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"google.golang.org/api/option"
	_ "modernc.org/sqlite"

	"itgportal/internal/adapters/cache"
	emailPkg "itgportal/internal/adapters/email"
	web "itgportal/internal/adapters/http"
	"itgportal/internal/adapters/http/perf"
	"itgportal/internal/adapters/storage"
	attendanceStore "itgportal/internal/adapters/storage/attendance"
	availabilityStore "itgportal/internal/adapters/storage/availability"
	clientStore "itgportal/internal/adapters/storage/client"
	coachStore "itgportal/internal/adapters/storage/coach"
	outboxStore "itgportal/internal/adapters/storage/outbox"
	"itgportal/internal/application/orchestrators"
	"itgportal/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx := context.Background()
	collector := perf.NewCollector(perf.DefaultRingSize)

	var stores *web.Stores
	var notices outboxStore.Store
	switch cfg.Store {
	case config.StoreFirestore:
		fs, err := openFirestore(ctx, cfg)
		if err != nil {
			log.Fatalf("failed to open firestore: %v", err)
		}
		defer fs.Close()
		stores = &web.Stores{
			CoachStore:        coachStore.NewFirestoreStore(fs),
			ClientStore:       clientStore.NewFirestoreStore(fs),
			AvailabilityStore: availabilityStore.NewFirestoreStore(fs),
			AttendanceStore:   attendanceStore.NewFirestoreStore(fs),
		}
		slog.Info("store_ready", "backend", cfg.Store, "project", cfg.FirestoreProject)
	default:
		db, err := openSQLite(cfg.DBPath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery())
		stores = &web.Stores{
			CoachStore:        coachStore.NewSQLiteStore(timedDB),
			ClientStore:       clientStore.NewSQLiteStore(timedDB),
			AvailabilityStore: availabilityStore.NewSQLiteStore(timedDB),
			AttendanceStore:   attendanceStore.NewSQLiteStore(timedDB),
		}
		notices = outboxStore.NewSQLiteStore(timedDB)
		slog.Info("store_ready", "backend", cfg.Store, "path", cfg.DBPath, "schema", storage.LatestSchemaVersion())
	}

	if !cfg.IsProduction() {
		seedDeps := orchestrators.SeedDirectoryDeps{
			CoachStore:  stores.CoachStore,
			ClientStore: stores.ClientStore,
			GenerateID:  func() string { return uuid.New().String() },
		}
		if err := orchestrators.ExecuteSeedDirectory(ctx, seedDeps); err != nil {
			log.Fatalf("failed to seed directory: %v", err)
		}
	}

	summaryCache := newSummaryCache(ctx, cfg, collector)

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
		slog.Info("email_sender_configured", "provider", "resend", "recipients", len(cfg.NotifyTo))
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_sender_disabled", "reason", "PORTAL_RESEND_KEY is not set")
		}
	}

	if notices != nil {
		stopRetry := orchestrators.StartNoticeRetryWorker(ctx, orchestrators.RetryNoticesDeps{
			Outbox: notices,
			Sender: sender,
			Now:    time.Now,
		}, time.Minute)
		defer stopRetry()
	}

	csrfKey, err := cfg.CSRFAuthKey()
	if err != nil {
		log.Fatalf("failed to prepare csrf key: %v", err)
	}

	handler := web.NewMux(stores, collector, web.Options{
		CSRFKey:        csrfKey,
		SecureCookies:  cfg.SecureCookies,
		TrustedOrigins: cfg.TrustedOrigins,
		RatePerSecond:  cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
		SlowRequest:    cfg.SlowRequest(),
		Cache:          summaryCache,
		Sender:         sender,
		EmailFrom:      cfg.EmailFrom,
		NotifyTo:       cfg.NotifyTo,
		Outbox:         notices,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server_shutdown_failed", "error", err)
	}
	slog.Info("server_stopped")
}

// openSQLite opens the database with WAL mode, foreign keys and a busy timeout, then migrates it.
func openSQLite(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if err := storage.MigrateDB(db, path); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func openFirestore(ctx context.Context, cfg config.Config) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.FirebaseCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentials))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirestoreProject}, opts...)
	if err != nil {
		return nil, err
	}
	return app.Firestore(ctx)
}

// newSummaryCache connects to Redis when configured. An unreachable Redis
// degrades to no caching rather than refusing to start.
func newSummaryCache(ctx context.Context, cfg config.Config, collector *perf.Collector) cache.SummaryCache {
	if cfg.RedisAddr == "" {
		return cache.NewNoopSummaryCache()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("summary_cache_unavailable", "addr", cfg.RedisAddr, "error", err)
		client.Close()
		return cache.NewNoopSummaryCache()
	}
	slog.Info("summary_cache_ready", "addr", cfg.RedisAddr, "ttl", cfg.SummaryTTL)
	return cache.NewRedisSummaryCache(client, cfg.SummaryTTL, collector)
}
