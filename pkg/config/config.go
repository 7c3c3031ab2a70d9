package config

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"vintrek/pkg/client"
	kafka_config "vintrek/pkg/kafka/config"
	"vintrek/pkg/logger"

	"github.com/spf13/viper"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Port      string
	LogLevel  string
	LogFormat string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	BackendTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Timezone string
	Currency string

	SessionStore   string
	SessionTTL     time.Duration
	BusyLockTTL    time.Duration
	BookingLockTTL time.Duration

	AdvisoryAutoAdvanceDelay time.Duration
	AdvisoryLatency          time.Duration
	AdvisoryAlertRate        float64
	AdvisoryFailureRate      float64

	PaymentProvider    string
	PaymentLatency     time.Duration
	PaymentFailureRate float64
	StripeSecretKey    string

	JWTSecret string

	KafkaEnabled bool
	Kafka        *kafka_config.Config

	Log    *logger.Logger
	Client *client.Client

	location *time.Location
}

// Load reads configuration from the environment and an optional config.yaml,
// exiting the process when it is invalid.
func Load(serviceName string) *Config {
	cfg, err := LoadFrom(newViper(), serviceName)
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)
	// a missing file is fine, env and defaults still apply
	_ = v.ReadInConfig()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(EnvMongoURI, DefaultMongoURI)
	v.SetDefault(EnvMongoDatabaseName, DefaultMongoDatabaseName)
	v.SetDefault(EnvMongoConnTimeout, DefaultMongoConnTimeout)
	v.SetDefault(EnvRedisAddr, DefaultRedisAddr)
	v.SetDefault(EnvRedisPassword, "")
	v.SetDefault(EnvRedisDB, DefaultRedisDB)
	v.SetDefault(EnvPort, DefaultPort)
	v.SetDefault(EnvLogLevel, DefaultLogLevel)
	v.SetDefault(EnvLogFormat, DefaultLogFormat)
	v.SetDefault(EnvRateLimitRequests, DefaultRateLimitRequests)
	v.SetDefault(EnvRateLimitWindow, DefaultRateLimitWindow)
	v.SetDefault(EnvRequestTimeout, DefaultRequestTimeout)
	v.SetDefault(EnvBackendTimeout, DefaultBackendTimeout)
	v.SetDefault(EnvIdempotencyTTL, DefaultIdempotencyTTL)
	v.SetDefault(EnvMaxRequestSize, DefaultMaxRequestSize)
	v.SetDefault(EnvReadTimeout, DefaultReadTimeout)
	v.SetDefault(EnvWriteTimeout, DefaultWriteTimeout)
	v.SetDefault(EnvIdleTimeout, DefaultIdleTimeout)
	v.SetDefault(EnvShutdownTimeout, DefaultShutdownTimeout)
	v.SetDefault(EnvTimezone, DefaultTimezone)
	v.SetDefault(EnvCurrency, DefaultCurrency)
	v.SetDefault(EnvSessionStore, DefaultSessionStore)
	v.SetDefault(EnvSessionTTL, DefaultSessionTTL)
	v.SetDefault(EnvBusyLockTTL, DefaultBusyLockTTL)
	v.SetDefault(EnvBookingLockTTL, DefaultBookingLockTTL)
	v.SetDefault(EnvAdvisoryAutoAdvanceDelay, DefaultAdvisoryAutoAdvanceDelay)
	v.SetDefault(EnvAdvisoryLatency, DefaultAdvisoryLatency)
	v.SetDefault(EnvAdvisoryAlertRate, DefaultAdvisoryAlertRate)
	v.SetDefault(EnvAdvisoryFailureRate, DefaultAdvisoryFailureRate)
	v.SetDefault(EnvPaymentProvider, DefaultPaymentProvider)
	v.SetDefault(EnvPaymentLatency, DefaultPaymentLatency)
	v.SetDefault(EnvPaymentFailureRate, DefaultPaymentFailureRate)
	v.SetDefault(EnvStripeSecretKey, "")
	v.SetDefault(EnvJWTSecret, "")
	v.SetDefault(EnvKafkaEnabled, DefaultKafkaEnabled)
	kafka_config.SetDefaults(v)
}

// LoadFrom builds a Config from an existing viper instance. The returned
// config always carries a logger, even when validation fails.
func LoadFrom(v *viper.Viper, serviceName string) (*Config, error) {
	cfg := &Config{
		MongoURI:          v.GetString(EnvMongoURI),
		MongoDatabaseName: v.GetString(EnvMongoDatabaseName),
		MongoConnTimeout:  v.GetDuration(EnvMongoConnTimeout),

		RedisAddr:     v.GetString(EnvRedisAddr),
		RedisPassword: v.GetString(EnvRedisPassword),
		RedisDB:       v.GetInt(EnvRedisDB),

		Port:      v.GetString(EnvPort),
		LogLevel:  v.GetString(EnvLogLevel),
		LogFormat: v.GetString(EnvLogFormat),

		RateLimitRequests: v.GetInt(EnvRateLimitRequests),
		RateLimitWindow:   v.GetDuration(EnvRateLimitWindow),

		RequestTimeout: v.GetDuration(EnvRequestTimeout),
		BackendTimeout: v.GetDuration(EnvBackendTimeout),
		IdempotencyTTL: v.GetDuration(EnvIdempotencyTTL),
		MaxRequestSize: v.GetInt(EnvMaxRequestSize),

		ReadTimeout:     v.GetDuration(EnvReadTimeout),
		WriteTimeout:    v.GetDuration(EnvWriteTimeout),
		IdleTimeout:     v.GetDuration(EnvIdleTimeout),
		ShutdownTimeout: v.GetDuration(EnvShutdownTimeout),

		Timezone: v.GetString(EnvTimezone),
		Currency: strings.ToLower(v.GetString(EnvCurrency)),

		SessionStore:   strings.ToLower(v.GetString(EnvSessionStore)),
		SessionTTL:     v.GetDuration(EnvSessionTTL),
		BusyLockTTL:    v.GetDuration(EnvBusyLockTTL),
		BookingLockTTL: v.GetDuration(EnvBookingLockTTL),

		AdvisoryAutoAdvanceDelay: v.GetDuration(EnvAdvisoryAutoAdvanceDelay),
		AdvisoryLatency:          v.GetDuration(EnvAdvisoryLatency),
		AdvisoryAlertRate:        v.GetFloat64(EnvAdvisoryAlertRate),
		AdvisoryFailureRate:      v.GetFloat64(EnvAdvisoryFailureRate),

		PaymentProvider:    strings.ToLower(v.GetString(EnvPaymentProvider)),
		PaymentLatency:     v.GetDuration(EnvPaymentLatency),
		PaymentFailureRate: v.GetFloat64(EnvPaymentFailureRate),
		StripeSecretKey:    v.GetString(EnvStripeSecretKey),

		JWTSecret: v.GetString(EnvJWTSecret),

		KafkaEnabled: v.GetBool(EnvKafkaEnabled),
		Kafka:        kafka_config.LoadFrom(v),

		Client: client.NewClient(),
	}

	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: true,
		Service:   serviceName,
	})

	if loc, err := time.LoadLocation(cfg.Timezone); err == nil && cfg.Timezone != "" {
		cfg.location = loc
	}

	return cfg, cfg.Validate()
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

// Location is the timezone used for "today" when opening a booking.
func (cfg *Config) Location() *time.Location {
	if cfg.location == nil {
		return time.UTC
	}
	return cfg.location
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}
	if cfg.RedisAddr == "" {
		errs = append(errs, "RedisAddr cannot be empty")
	}

	positive := map[string]time.Duration{
		"MongoConnTimeout": cfg.MongoConnTimeout,
		"RateLimitWindow":  cfg.RateLimitWindow,
		"RequestTimeout":   cfg.RequestTimeout,
		"BackendTimeout":   cfg.BackendTimeout,
		"IdempotencyTTL":   cfg.IdempotencyTTL,
		"ReadTimeout":      cfg.ReadTimeout,
		"WriteTimeout":     cfg.WriteTimeout,
		"IdleTimeout":      cfg.IdleTimeout,
		"ShutdownTimeout":  cfg.ShutdownTimeout,
		"SessionTTL":       cfg.SessionTTL,
		"BusyLockTTL":      cfg.BusyLockTTL,
		"BookingLockTTL":   cfg.BookingLockTTL,
	}
	for _, name := range slices.Sorted(maps.Keys(positive)) {
		if positive[name] <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got: %s", name, positive[name]))
		}
	}

	if cfg.AdvisoryAutoAdvanceDelay < 0 {
		errs = append(errs, fmt.Sprintf("AdvisoryAutoAdvanceDelay cannot be negative, got: %s", cfg.AdvisoryAutoAdvanceDelay))
	}
	if cfg.AdvisoryLatency < 0 || cfg.PaymentLatency < 0 {
		errs = append(errs, "simulated latencies cannot be negative")
	}
	for name, rate := range map[string]float64{
		"AdvisoryAlertRate":   cfg.AdvisoryAlertRate,
		"AdvisoryFailureRate": cfg.AdvisoryFailureRate,
		"PaymentFailureRate":  cfg.PaymentFailureRate,
	} {
		if rate < 0 || rate > 1 {
			errs = append(errs, fmt.Sprintf("%s must be between 0 and 1, got: %g", name, rate))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil || cfg.Timezone == "" {
		errs = append(errs, fmt.Sprintf("Timezone must be a valid IANA zone, got: %q", cfg.Timezone))
	}
	if !regexp.MustCompile(`^[a-z]{3}$`).MatchString(cfg.Currency) {
		errs = append(errs, fmt.Sprintf("Currency must be a 3-letter ISO code, got: %q", cfg.Currency))
	}

	if cfg.SessionStore != SessionStoreRedis && cfg.SessionStore != SessionStoreMemory {
		errs = append(errs, fmt.Sprintf("SessionStore must be one of [redis, memory], got: %q", cfg.SessionStore))
	}

	switch cfg.PaymentProvider {
	case PaymentProviderSimulated:
	case PaymentProviderStripe:
		if cfg.StripeSecretKey == "" {
			errs = append(errs, "StripeSecretKey is required when PaymentProvider is stripe")
		}
	default:
		errs = append(errs, fmt.Sprintf("PaymentProvider must be one of [simulated, stripe], got: %q", cfg.PaymentProvider))
	}

	if cfg.KafkaEnabled && cfg.Kafka != nil {
		if err := cfg.Kafka.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return errors.New(errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_addr", cfg.RedisAddr,
		"redis_db", cfg.RedisDB,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"backend_timeout", cfg.BackendTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"timezone", cfg.Timezone,
		"currency", cfg.Currency,
		"session_store", cfg.SessionStore,
		"session_ttl", cfg.SessionTTL,
		"busy_lock_ttl", cfg.BusyLockTTL,
		"booking_lock_ttl", cfg.BookingLockTTL,
		"advisory_auto_advance_delay", cfg.AdvisoryAutoAdvanceDelay,
		"advisory_latency", cfg.AdvisoryLatency,
		"advisory_alert_rate", cfg.AdvisoryAlertRate,
		"advisory_failure_rate", cfg.AdvisoryFailureRate,
		"payment_provider", cfg.PaymentProvider,
		"payment_latency", cfg.PaymentLatency,
		"payment_failure_rate", cfg.PaymentFailureRate,
		"stripe_key_set", cfg.StripeSecretKey != "",
		"jwt_secret_set", cfg.JWTSecret != "",
		"kafka_enabled", cfg.KafkaEnabled,
	)
	if cfg.JWTSecret == "" {
		cfg.Log.Warn("JWT_SECRET is not set, availability window management is disabled")
	}
	if cfg.KafkaEnabled {
		cfg.Kafka.LogConfiguration(cfg.Log.Info)
	}
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}
