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

	"github.com/caarlos0/env/v11"
	"github.com/dicechamber/dicechamber/internal/handlers/ws"
	"github.com/dicechamber/dicechamber/internal/repositories/records"
	"github.com/dicechamber/dicechamber/internal/services/session"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type config struct {
	ListenAddr    string `env:"LISTEN_ADDR" envDefault:":8080"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"30s"`
	EvictionTimeout time.Duration `env:"SESSION_EVICTION_TIMEOUT" envDefault:"10m"`
	ReplayLimit     int           `env:"REPLAY_LIMIT" envDefault:"50"`
	RetentionAge    time.Duration `env:"ROLL_RETENTION_AGE" envDefault:"24h"`
	PurgeInterval   time.Duration `env:"PURGE_INTERVAL" envDefault:"1h"`
}

func main() {
	// A local .env is optional
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Failed to parse configuration: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	// Test Redis connection
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Initialize the record store
	store, err := records.NewRedis(&records.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		log.Fatalf("Failed to create record store: %v", err)
	}

	// Initialize the coordinator registry
	registry, err := session.NewRegistry(&session.Config{
		Store:           store,
		IdleTimeout:     cfg.IdleTimeout,
		EvictionTimeout: cfg.EvictionTimeout,
		ReplayLimit:     cfg.ReplayLimit,
		ReplayMaxAge:    cfg.RetentionAge,
	})
	if err != nil {
		log.Fatalf("Failed to create session registry: %v", err)
	}

	// Initialize the connection router
	router, err := ws.New(&ws.Config{
		Registry: registry,
	})
	if err != nil {
		log.Fatalf("Failed to create connection router: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle(router.PathPrefix(), router)
	// A bare prefix with no identifier still gets the router's error
	mux.Handle(strings.TrimSuffix(router.PathPrefix(), "/"), router)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	// Retention sweep, independent of request handling
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go runRetentionSweep(sweepCtx, store, cfg.RetentionAge, cfg.PurgeInterval)

	go func() {
		log.Printf("Listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	log.Println("Server has been shut down")
}

// runRetentionSweep periodically purges roll records past the retention age
func runRetentionSweep(ctx context.Context, store records.Repository, age, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			out, err := store.PurgeOlderThan(ctx, &records.PurgeOlderThanInput{
				Age: age,
			})
			if err != nil {
				log.Printf("Retention sweep failed: %v", err)
				continue
			}
			if out.RecordsRemoved > 0 || out.SessionsRemoved > 0 {
				log.Printf("Retention sweep removed %d records, %d stale sessions",
					out.RecordsRemoved, out.SessionsRemoved)
			}
		}
	}
}
