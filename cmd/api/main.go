package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/voyage/internal/api"
	"example.com/voyage/internal/auth"
	"example.com/voyage/internal/billing"
	"example.com/voyage/internal/catalog"
	"example.com/voyage/internal/config"
	"example.com/voyage/internal/domain"
	"example.com/voyage/internal/outbox"
	persistence "example.com/voyage/internal/persistence/postgres"
	httptransport "example.com/voyage/internal/transport/http"
	"example.com/voyage/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	content, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("failed to load catalog %s: %v", cfg.CatalogPath, err)
	}

	repo := persistence.NewRepository(pool)
	if err := repo.SeedRaids(ctx, cfg.DefaultTenant, content.Raids(cfg.DefaultTenant, time.Now())); err != nil {
		log.Fatalf("failed to seed raids for tenant %s: %v", cfg.DefaultTenant, err)
	}

	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()

	registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
	dispatcher := outbox.NewDispatcher(pool, producer, registry, cfg.OutboxPollInterval, cfg.OutboxBatchSize)

	go dispatcher.Start(ctx)

	hub := ws.NewHub(log.Default())
	service := domain.NewService(repo, repo, repo, content, domain.WithRaidNotifier(hub))

	var checkout billing.Provider
	if cfg.StripeSecretKey != "" {
		checkout = billing.NewStripeProvider(cfg.StripeSecretKey, cfg.StripePriceID, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)
	}

	handler := api.NewHandler(service, checkout)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	authCfg := auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}

	// WebSocket clients cannot set an Authorization header, so the live raid
	// feed reads the token from the query string.
	mux.Handle("/v1/raids/live", hub.Handler(func(r *http.Request) string {
		claims, err := auth.Parse(r.URL.Query().Get("token"), authCfg)
		if err != nil {
			return ""
		}
		return claims.TenantID
	}))

	// Simple CORS middleware for local dev
	cors := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	// Basic request logger
	logger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("%s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}

	authMiddleware := auth.NewMiddleware(authCfg, func(r *http.Request) bool {
		switch {
		case r.URL.Path == "/healthz", r.URL.Path == "/metrics":
			return true
		case r.URL.Path == "/v1/billing/checkout":
			return true
		case strings.HasPrefix(r.URL.Path, "/v1/raids/live"):
			return true
		}
		return false
	})

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, authMiddleware.Wrap(logger(cors(mux))))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("voyage-service listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	dispatcher.Wait()
}
