package cmd

import (
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/services"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// RedisAddr enables the Redis dispatch lock and the realtime push channel.
	// An empty address falls back to an in-process lock and no push.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers    []string
	KafkaFleetTopic string

	// RouteServiceURL is optional; without it distances are straight lines.
	RouteServiceURL string
	RouteTimeout    time.Duration
	RouteMaxRetries uint64
	RouteRetryDelay time.Duration

	DispatchQueueSize  int
	DispatchWorkers    int
	RedispatchSchedule string
	RedispatchMinAge   time.Duration
	InitialRadiusKm    float64
	MaxRadiusKm        float64
	RadiusStepKm       float64
	OfferTimeout       time.Duration

	RankWeightDistance   float64
	RankWeightRating     float64
	RankWeightAcceptance float64

	BaseFareXAF    string
	PerKmRateXAF   string
	MinimumFareXAF string
	FeeRatio       string
}

// DSN builds the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode,
	)
}

// DispatchConfig returns the ring search settings. Invalid rank weights are
// passed through: the matcher then ranks by distance only.
func (c Config) DispatchConfig() services.DispatchConfig {
	return services.DispatchConfig{
		InitialRadiusKm: c.InitialRadiusKm,
		MaxRadiusKm:     c.MaxRadiusKm,
		RadiusStepKm:    c.RadiusStepKm,
		OfferTimeout:    c.OfferTimeout,
		RankWeights: services.RankWeights{
			Distance:   c.RankWeightDistance,
			Rating:     c.RankWeightRating,
			Acceptance: c.RankWeightAcceptance,
		},
	}
}

// PricingConfig parses the tariff. Amounts are kept as strings so that no
// float rounding happens between the environment and the decimal values.
func (c Config) PricingConfig() (services.PricingConfig, error) {
	var (
		cfg services.PricingConfig
		err error
	)
	if cfg.BaseFare, err = decimal.NewFromString(c.BaseFareXAF); err != nil {
		return cfg, fmt.Errorf("base fare: %w", err)
	}
	if cfg.PerKmRate, err = decimal.NewFromString(c.PerKmRateXAF); err != nil {
		return cfg, fmt.Errorf("per km rate: %w", err)
	}
	if cfg.MinimumFare, err = decimal.NewFromString(c.MinimumFareXAF); err != nil {
		return cfg, fmt.Errorf("minimum fare: %w", err)
	}
	if cfg.FeeRatio, err = decimal.NewFromString(c.FeeRatio); err != nil {
		return cfg, fmt.Errorf("fee ratio: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadConfig reads the environment through v, falling back to the defaults
// below for every unset key.
func LoadConfig(v *viper.Viper) Config {
	v.AutomaticEnv()
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "dispatch")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KAFKA_FLEET_TOPIC", "dispatch.fleet-ops")
	v.SetDefault("ROUTE_TIMEOUT", 2*time.Second)
	v.SetDefault("ROUTE_MAX_RETRIES", 2)
	v.SetDefault("ROUTE_RETRY_DELAY", 100*time.Millisecond)
	v.SetDefault("DISPATCH_QUEUE_SIZE", 1024)
	v.SetDefault("DISPATCH_WORKERS", 4)
	v.SetDefault("REDISPATCH_SCHEDULE", "*/15 * * * * *")
	v.SetDefault("REDISPATCH_MIN_AGE", 30*time.Second)

	defaults := services.DefaultDispatchConfig()
	v.SetDefault("INITIAL_RADIUS_KM", defaults.InitialRadiusKm)
	v.SetDefault("MAX_RADIUS_KM", defaults.MaxRadiusKm)
	v.SetDefault("RADIUS_STEP_KM", defaults.RadiusStepKm)
	v.SetDefault("OFFER_TIMEOUT", defaults.OfferTimeout)
	v.SetDefault("RANK_WEIGHT_DISTANCE", defaults.RankWeights.Distance)
	v.SetDefault("RANK_WEIGHT_RATING", defaults.RankWeights.Rating)
	v.SetDefault("RANK_WEIGHT_ACCEPTANCE", defaults.RankWeights.Acceptance)

	pricing := services.DefaultPricingConfig()
	v.SetDefault("BASE_FARE_XAF", pricing.BaseFare.String())
	v.SetDefault("PER_KM_RATE_XAF", pricing.PerKmRate.String())
	v.SetDefault("MINIMUM_FARE_XAF", pricing.MinimumFare.String())
	v.SetDefault("FEE_RATIO", pricing.FeeRatio.String())

	return Config{
		HTTPPort:             v.GetString("HTTP_PORT"),
		DBHost:               v.GetString("DB_HOST"),
		DBPort:               v.GetString("DB_PORT"),
		DBUser:               v.GetString("DB_USER"),
		DBPassword:           v.GetString("DB_PASSWORD"),
		DBName:               v.GetString("DB_NAME"),
		DBSslMode:            v.GetString("DB_SSLMODE"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		RedisPassword:        v.GetString("REDIS_PASSWORD"),
		RedisDB:              v.GetInt("REDIS_DB"),
		KafkaBrokers:         splitList(v.GetString("KAFKA_BROKERS")),
		KafkaFleetTopic:      v.GetString("KAFKA_FLEET_TOPIC"),
		RouteServiceURL:      v.GetString("ROUTE_SERVICE_URL"),
		RouteTimeout:         v.GetDuration("ROUTE_TIMEOUT"),
		RouteMaxRetries:      v.GetUint64("ROUTE_MAX_RETRIES"),
		RouteRetryDelay:      v.GetDuration("ROUTE_RETRY_DELAY"),
		DispatchQueueSize:    v.GetInt("DISPATCH_QUEUE_SIZE"),
		DispatchWorkers:      v.GetInt("DISPATCH_WORKERS"),
		RedispatchSchedule:   v.GetString("REDISPATCH_SCHEDULE"),
		RedispatchMinAge:     v.GetDuration("REDISPATCH_MIN_AGE"),
		InitialRadiusKm:      v.GetFloat64("INITIAL_RADIUS_KM"),
		MaxRadiusKm:          v.GetFloat64("MAX_RADIUS_KM"),
		RadiusStepKm:         v.GetFloat64("RADIUS_STEP_KM"),
		OfferTimeout:         v.GetDuration("OFFER_TIMEOUT"),
		RankWeightDistance:   v.GetFloat64("RANK_WEIGHT_DISTANCE"),
		RankWeightRating:     v.GetFloat64("RANK_WEIGHT_RATING"),
		RankWeightAcceptance: v.GetFloat64("RANK_WEIGHT_ACCEPTANCE"),
		BaseFareXAF:          v.GetString("BASE_FARE_XAF"),
		PerKmRateXAF:         v.GetString("PER_KM_RATE_XAF"),
		MinimumFareXAF:       v.GetString("MINIMUM_FARE_XAF"),
		FeeRatio:             v.GetString("FEE_RATIO"),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
