package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/export"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/filestore"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/geocode"
	httpapi "github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/inventory"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/notify"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/pricing"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/settings"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/storage"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- storage ---
	var (
		products    catalog.Repository
		ledger      order.Ledger
		settingRepo settings.Repository
	)
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatalf("db connect: %v", err)
		}
		defer pool.Close()

		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				logger.Fatalf("db migrate: %v", err)
			}
		}
		products = catalog.NewPostgresRepository(pool)
		ledger = order.NewPostgresLedger(pool, inventory.NewAdjuster())
		settingRepo = settings.NewPostgresRepository(pool)
	case config.BackendFile:
		store, err := filestore.Open(cfg.DataDir, logger)
		if err != nil {
			logger.Fatalf("file store: %v", err)
		}
		products = store.Catalog()
		ledger = store.Ledger()
		settingRepo = store.Settings()
	}
	logger.Printf("storage backend: %s", cfg.StorageBackend)

	// --- blobs ---
	var (
		blobs     storage.BlobStore
		uploadDir string
	)
	switch cfg.BlobBackend {
	case config.BlobR2:
		r2, err := storage.NewR2Store(ctx, cfg.R2)
		if err != nil {
			logger.Fatalf("r2: %v", err)
		}
		blobs = r2
	default:
		local, err := storage.NewLocalStore(cfg.UploadDir, "/uploads")
		if err != nil {
			logger.Fatalf("upload dir: %v", err)
		}
		blobs = local
		uploadDir = cfg.UploadDir
	}

	// --- carts ---
	var cartStore cart.Store = cart.NewMemoryStore()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatalf("redis url: %v", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatalf("redis ping: %v", err)
		}
		cartStore = cart.NewRedisStore(rdb, cfg.SessionTTL)
		logger.Printf("carts: redis")
	}

	// --- notifications ---
	hub := notify.NewHub(logger)
	var notifier order.Notifier = notify.LocalNotifier{Hub: hub}
	if cfg.RabbitURL != "" {
		conn, err := events.Dial(cfg.RabbitURL)
		if err != nil {
			logger.Fatalf("rabbit: %v", err)
		}
		defer conn.Close()

		pub, err := events.NewPublisher(conn)
		if err != nil {
			logger.Fatalf("rabbit publisher: %v", err)
		}
		defer pub.Close()

		if err := events.StartOrderPlacedConsumer(ctx, conn, hub, logger); err != nil {
			logger.Fatalf("start consumer: %v", err)
		}
		notifier = pub
		logger.Printf("order events: rabbitmq")
	}

	// --- services ---
	engine := pricing.NewEngine(cfg.DeliveryCharge)
	catalogSvc := catalog.NewService(products, blobs, logger)
	carts := cart.NewService(cartStore, products, engine)
	orders := order.NewService(order.Deps{
		Ledger:   ledger,
		Basket:   carts,
		Products: products,
		Pricing:  engine,
		Pins:     order.NewPinPolicy(cfg.AllowedPincodes),
		Notifier: notifier,
		Logger:   logger,
	})
	settingsSvc := settings.NewService(settingRepo, blobs, logger)

	seed := catalog.DefaultSeed()
	if cfg.SeedFile != "" {
		seed, err = catalog.LoadSeed(cfg.SeedFile)
		if err != nil {
			logger.Fatalf("seed: %v", err)
		}
	}
	if n, err := catalogSvc.Seed(ctx, seed); err != nil {
		logger.Fatalf("seed: %v", err)
	} else if n > 0 {
		logger.Printf("seeded %d products", n)
	}

	if cfg.AdminPassword == config.DefaultAdminPassword {
		logger.Printf("WARNING: using the default admin password; set ADMIN_PASSWORD or ADMIN_PASSWORD_HASH")
	}
	if cfg.JWTSecretGenerated {
		logger.Printf("WARNING: JWT_SECRET not set; admin sessions end on restart")
	}
	authn, err := auth.NewAuthenticator(auth.Credentials{
		Username:     cfg.AdminUsername,
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPasswordHash,
	}, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("auth: %v", err)
	}

	geo, err := geocode.NewClient(cfg.GeocodeURL, cfg.GeocodeTimeout, cfg.GeocodeUserAgent)
	if err != nil {
		logger.Fatalf("geocode: %v", err)
	}

	// --- HTTP ---
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:   logger,
		Catalog:  catalogSvc,
		Carts:    carts,
		Orders:   orders,
		Settings: settingsSvc,
		Exporter: export.NewExporter(export.Shop{Name: cfg.ShopName, Currency: cfg.Currency}),
		Auth:     authn,
		Live:     notify.NewLiveHandler(hub, cfg.CORSAllowOrigins, logger),
		Geocoder: geo,

		UploadDir:        uploadDir,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		SessionTTL:       cfg.SessionTTL,
		CookieSecure:     cfg.CookieSecure,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("shutdown signal: %s", sig)
	case err := <-errCh:
		logger.Printf("fatal error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown error: %v", err)
	}
	cancel()

	logger.Printf("shutdown complete")
}
