package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "vintrek"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultBackendTimeout = 5 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultTimezone = "Asia/Colombo"
	DefaultCurrency = "usd"

	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"

	DefaultSessionStore   = SessionStoreRedis
	DefaultSessionTTL     = 30 * time.Minute
	DefaultBusyLockTTL    = 30 * time.Second
	DefaultBookingLockTTL = 10 * time.Second

	DefaultAdvisoryAutoAdvanceDelay = 5 * time.Second
	DefaultAdvisoryLatency          = 1500 * time.Millisecond
	DefaultAdvisoryAlertRate        = 0.7
	DefaultAdvisoryFailureRate      = 0.0

	PaymentProviderSimulated = "simulated"
	PaymentProviderStripe    = "stripe"

	DefaultPaymentProvider    = PaymentProviderSimulated
	DefaultPaymentLatency     = 2 * time.Second
	DefaultPaymentFailureRate = 0.0

	DefaultKafkaEnabled = false
)
