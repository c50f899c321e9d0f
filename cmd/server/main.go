package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/blast/internal/auth"
	"github.com/mmynk/blast/internal/broadcast"
	"github.com/mmynk/blast/internal/config"
	"github.com/mmynk/blast/internal/httpapi"
	"github.com/mmynk/blast/internal/metrics"
	"github.com/mmynk/blast/internal/middleware"
	"github.com/mmynk/blast/internal/secrets"
	"github.com/mmynk/blast/internal/service"
	"github.com/mmynk/blast/internal/sms"
	"github.com/mmynk/blast/internal/storage"
	"github.com/mmynk/blast/internal/storage/memstore"
	"github.com/mmynk/blast/internal/storage/redisstore"
	"github.com/mmynk/blast/internal/storage/sqlite"
	"github.com/mmynk/blast/pkg/logging"
	"github.com/mmynk/blast/pkg/relayv1/relayv1connect"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	configPath := flag.String("config", getEnv("BLAST_CONFIG", ""), "path to a YAML config file")
	flag.Parse()

	logging.Setup()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func secretProvider(cfg config.Config) secrets.Provider {
	chain := secrets.Chain{secrets.EnvProvider{}}
	if cfg.Secrets.Dir != "" {
		chain = append(chain, secrets.DirProvider{Dir: cfg.Secrets.Dir})
	}
	return chain
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	var (
		store storage.Store
		err   error
	)
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		store, err = sqlite.New(cfg.Store.SQLitePath)
	case config.DriverRedis:
		store, err = redisstore.New(ctx, redisstore.Config{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
	case config.DriverMemory:
		store = memstore.New()
	default:
		err = fmt.Errorf("unknown store driver: %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := store.BindScheme(ctx, cfg.Scheme()); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func newSender(ctx context.Context, cfg config.Config, provider secrets.Provider) (broadcast.Sender, error) {
	if cfg.SMS.Provider == config.ProviderLog {
		slog.Warn("Using log-only SMS sender; no messages will be delivered")
		return sms.LogSender{}, nil
	}
	return sms.NewTwilioSender(ctx, provider, sms.TwilioOptions{
		BaseURL: cfg.SMS.TwilioBaseURL,
		Timeout: cfg.SMS.Timeout,
	})
}

func newAuth(ctx context.Context, cfg config.Config, provider secrets.Provider) (*auth.PasswordAuthenticator, *auth.JWTManager, error) {
	hash, err := provider.Secret(ctx, secrets.OperatorPasswordHash)
	if err != nil {
		return nil, nil, err
	}
	authenticator, err := auth.NewPasswordAuthenticator(hash)
	if err != nil {
		return nil, nil, err
	}
	key, err := provider.Secret(ctx, secrets.JWTSigningKey)
	if err != nil {
		return nil, nil, err
	}
	return authenticator, auth.NewJWTManager(key, cfg.Auth.TokenTTL), nil
}

func run(ctx context.Context, cfg config.Config) error {
	provider := secretProvider(cfg)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.Store.Driver, "addressing_scheme", cfg.Scheme())

	sender, err := newSender(ctx, cfg, provider)
	if err != nil {
		return fmt.Errorf("failed to initialize sms transport: %w", err)
	}

	authenticator, jwtManager, err := newAuth(ctx, cfg, provider)
	if err != nil {
		return fmt.Errorf("failed to initialize auth: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	relay := service.NewRelay(store, cfg.Scheme(), sender, metrics.New(registry))

	mux := http.NewServeMux()

	// Register Connect service
	relayPath, relayHandler := relayv1connect.NewRelayServiceHandler(
		service.NewRelayService(relay, authenticator, jwtManager),
		connect.WithInterceptors(
			middleware.LoggingInterceptor(),
			middleware.RequireAuth(jwtManager, relayv1connect.RelayServiceLoginProcedure),
		),
	)
	mux.Handle(relayPath, relayHandler)

	mux.Handle("/api/", http.StripPrefix("/api", httpapi.NewRouter(relay, jwtManager, cfg.CORS.AllowOrigin)))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Add logging and CORS middleware
	handler := middleware.Logging(middleware.CORS(cfg.CORS.AllowOrigin)(mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
