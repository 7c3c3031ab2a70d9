package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvBackendTimeout = "BACKEND_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvTimezone = "TIMEZONE"
	EnvCurrency = "CURRENCY"

	EnvSessionStore   = "SESSION_STORE"
	EnvSessionTTL     = "SESSION_TTL"
	EnvBusyLockTTL    = "BUSY_LOCK_TTL"
	EnvBookingLockTTL = "BOOKING_LOCK_TTL"

	EnvAdvisoryAutoAdvanceDelay = "ADVISORY_AUTO_ADVANCE_DELAY"
	EnvAdvisoryLatency          = "ADVISORY_LATENCY"
	EnvAdvisoryAlertRate        = "ADVISORY_ALERT_RATE"
	EnvAdvisoryFailureRate      = "ADVISORY_FAILURE_RATE"

	EnvPaymentProvider    = "PAYMENT_PROVIDER"
	EnvPaymentLatency     = "PAYMENT_LATENCY"
	EnvPaymentFailureRate = "PAYMENT_FAILURE_RATE"
	EnvStripeSecretKey    = "STRIPE_SECRET_KEY"

	EnvJWTSecret = "JWT_SECRET"

	EnvKafkaEnabled = "KAFKA_ENABLED"
)
