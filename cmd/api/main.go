package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nmtruong/shophub-backend/api/routes"
	"github.com/nmtruong/shophub-backend/internal/auth"
	"github.com/nmtruong/shophub-backend/internal/cart"
	"github.com/nmtruong/shophub-backend/internal/categories"
	"github.com/nmtruong/shophub-backend/internal/chat"
	"github.com/nmtruong/shophub-backend/internal/orders"
	"github.com/nmtruong/shophub-backend/internal/products"
	"github.com/nmtruong/shophub-backend/internal/reviews"
	"github.com/nmtruong/shophub-backend/internal/users"
	"github.com/nmtruong/shophub-backend/internal/wishlist"
	"github.com/nmtruong/shophub-backend/pkg/auth/session"
	"github.com/nmtruong/shophub-backend/pkg/config"
	"github.com/nmtruong/shophub-backend/pkg/db"
	"github.com/nmtruong/shophub-backend/pkg/logger"
	"github.com/nmtruong/shophub-backend/pkg/media"
	"github.com/nmtruong/shophub-backend/pkg/migrate"
	"github.com/nmtruong/shophub-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	mediaStorage, err := media.NewStorage(cfg.Media)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare media storage", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	productsRepo := products.NewRepository(gormDB)
	categoriesRepo := categories.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	reviewsRepo := reviews.NewRepository(gormDB)
	chatRepo := chat.NewRepository(gormDB)
	wishlistRepo := wishlist.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo: usersRepo,
		Sessions: sessionManager,
		JWT:      cfg.JWT,
		Password: cfg.Password,
	})
	exitOnError(logg, "auth service", err)

	usersService, err := users.NewService(users.ServiceParams{Repo: usersRepo, Tx: dbClient})
	exitOnError(logg, "users service", err)

	productsService, err := products.NewService(products.ServiceParams{Repo: productsRepo})
	exitOnError(logg, "products service", err)

	categoriesService, err := categories.NewService(categories.ServiceParams{Repo: categoriesRepo})
	exitOnError(logg, "categories service", err)

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:        cartRepo,
		ProductRepo: productsRepo,
		Tx:          dbClient,
	})
	exitOnError(logg, "cart service", err)

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:        ordersRepo,
		CartRepo:    cartRepo,
		ProductRepo: productsRepo,
		Tx:          dbClient,
		Logger:      logg,
		Checkout:    cfg.Checkout,
	})
	exitOnError(logg, "orders service", err)

	reviewsService, err := reviews.NewService(reviews.ServiceParams{
		Repo:        reviewsRepo,
		ProductRepo: productsRepo,
		Tx:          dbClient,
	})
	exitOnError(logg, "reviews service", err)

	chatService, err := chat.NewService(chat.ServiceParams{Repo: chatRepo, Tx: dbClient})
	exitOnError(logg, "chat service", err)

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Repo:        wishlistRepo,
		ProductRepo: productsRepo,
	})
	exitOnError(logg, "wishlist service", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := routes.NewRouter(routes.RouterParams{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		Sessions:       sessionManager,
		MediaStorage:   mediaStorage,
		Registry:       registry,
		AuthService:    authService,
		UsersService:   usersService,
		ProductService: productsService,
		CategorySvc:    categoriesService,
		CartService:    cartService,
		OrdersService:  ordersService,
		ReviewsService: reviewsService,
		ChatService:    chatService,
		WishlistSvc:    wishlistService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server stopped")
	}
}

func exitOnError(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
