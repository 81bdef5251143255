package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch/cmd"
	api "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/fleetops"
	"dispatch/internal/adapters/out/postgres"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := gorm.Open(pgdriver.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := postgres.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	infra := cmd.Infrastructure{
		GormDB:     gormDB,
		Registerer: registry,
		Logger:     logger,
	}
	if configs.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     configs.RedisAddr,
			Password: configs.RedisPassword,
			DB:       configs.RedisDB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		infra.Redis = client
	}
	if len(configs.KafkaBrokers) > 0 {
		writer := fleetops.NewWriter(configs.KafkaBrokers, configs.KafkaFleetTopic)
		defer writer.Close()
		infra.Kafka = writer
	}

	app, err := cmd.NewCompositionRoot(configs, infra)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	jobManager, jobHandlers := app.JobManager()
	if err := jobManager.StartAll(ctx, jobHandlers); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(ctx, app, registry, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	// .env is optional; the process environment wins over it.
	_ = godotenv.Load(".env")
	return cmd.LoadConfig(viper.New())
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, registry *prometheus.Registry, port string) {
	e := api.NewEcho(api.NewServer(app.HTTPHandlers()), promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			e.Logger.Error(err)
		}
	}()

	if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.Logger.Fatal(err)
	}
}
