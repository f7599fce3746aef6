package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	gateway "github.com/craftdeck/oauth-gateway"
	oauthapi "github.com/craftdeck/oauth-gateway/api/echo"
	"github.com/craftdeck/oauth-gateway/cache"
	redicache "github.com/craftdeck/oauth-gateway/cache/redis"
	"github.com/craftdeck/oauth-gateway/client"
	"github.com/craftdeck/oauth-gateway/config"
	"github.com/craftdeck/oauth-gateway/domain"
	"github.com/craftdeck/oauth-gateway/idp"
	"github.com/craftdeck/oauth-gateway/internal/memstore"
	"github.com/craftdeck/oauth-gateway/internal/metrics"
	"github.com/craftdeck/oauth-gateway/log"
	"github.com/craftdeck/oauth-gateway/mongodb"
	"github.com/craftdeck/oauth-gateway/session"
	"github.com/craftdeck/oauth-gateway/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logLevel, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logLevel = zerolog.InfoLevel
	}
	logger := log.NewZerologAdapter(logLevel, cfg.LogPretty)

	ctx := context.Background()
	logger.Info(ctx, "starting oauth-gateway", map[string]interface{}{
		"http_port":  cfg.HTTPPort,
		"public_url": cfg.PublicURL,
		"idp_base":   cfg.IDPBaseURL,
		"mongo":      cfg.MongoURI != "",
		"redis":      cfg.RedisAddr != "",
	})

	tp, err := tracing.InitTracerProvider(cfg.OtelServiceName)
	if err != nil {
		logger.Error(ctx, "failed to initialize tracer provider", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	metrics.Init(prometheus.DefaultRegisterer)

	// Stores. Without a Mongo URI the gateway runs on in-memory stores,
	// which pairs with the static client catalog for local development.
	var (
		clientRepo domain.ClientRepository
		codeRepo   domain.AuthCodeRepository
		tokenRepo  domain.TokenRepository
	)
	if cfg.MongoURI != "" {
		db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			logger.Error(ctx, "failed to connect to mongodb", err)
			os.Exit(1)
		}

		clientRepo = mongodb.NewClientRepository(db)

		codeRepo, err = mongodb.NewAuthCodeRepository(ctx, db)
		if err != nil {
			logger.Error(ctx, "failed to initialize auth code repository", err)
			os.Exit(1)
		}

		tokenRepo, err = mongodb.NewTokenRepository(ctx, db)
		if err != nil {
			logger.Error(ctx, "failed to initialize token repository", err)
			os.Exit(1)
		}
	} else {
		logger.Warn(ctx, "MONGO_URI not set, using in-memory stores")
		clientRepo = memstore.NewClientStore()
		codeRepo = memstore.NewAuthCodeStore()
		tokenRepo = memstore.NewTokenStore()
	}

	var tokenCache cache.TokenStore
	if cfg.RedisAddr != "" {
		tokenCache = redicache.NewTokenStore(
			goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr}),
			cfg.OtelServiceName,
		)
	} else {
		tokenCache = cache.NewMemoryTokenStore()
	}
	defer tokenCache.Close()

	idpClient := idp.New(cfg.IDPBaseURL, cfg.IDPServiceKey, cfg.IDPClientID)
	sessions := session.NewResolver(idpClient, cfg.SessionCookieName)
	registry := client.NewRegistry(clientRepo, logger)

	svc := gateway.NewService(registry, codeRepo, tokenRepo, idpClient, sessions, logger, gateway.Options{
		PublicURL:  cfg.PublicURL,
		TokenCache: tokenCache,
		CodeTTL:    time.Duration(cfg.AuthCodeTTLMin) * time.Minute,
		TokenTTL:   time.Duration(cfg.AccessTokenTTLSec) * time.Second,
	})

	e := echo.New()
	e.HideBanner = true
	oauthapi.NewOAuthAPI(svc, logger).RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(ctx, "http server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "http server failed", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "graceful shutdown failed", err)
	}
}
