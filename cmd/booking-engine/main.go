package main

import (
	"context"

	"vintrek/internal/advisory"
	availabilityhandler "vintrek/internal/availability/handler"
	availabilityrepo "vintrek/internal/availability/repository"
	availabilityservice "vintrek/internal/availability/service"
	availabilityvalidator "vintrek/internal/availability/validator"
	bookingsevents "vintrek/internal/bookings/events"
	bookingshandler "vintrek/internal/bookings/handler"
	bookingsrepo "vintrek/internal/bookings/repository"
	bookingsservice "vintrek/internal/bookings/service"
	bookingsvalidator "vintrek/internal/bookings/validator"
	"vintrek/internal/payment"
	resourceshandler "vintrek/internal/resources/handler"
	resourcesrepo "vintrek/internal/resources/repository"
	resourcesservice "vintrek/internal/resources/service"
	workflowhandler "vintrek/internal/workflow/handler"
	workflowservice "vintrek/internal/workflow/service"
	"vintrek/internal/workflow/store"
	"vintrek/pkg/app"
	"vintrek/pkg/config"
	"vintrek/pkg/kafka"
	kafkamiddleware "vintrek/pkg/kafka/middleware"
)

const ServiceName = "booking-engine"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting VinTrek booking engine")

	cfg.SetMongo()
	if cfg.SessionStore == config.SessionStoreRedis {
		cfg.SetRedis()
	}

	resources := resourcesservice.NewResourceService(resourcesrepo.NewMongoResourceRepository(cfg), cfg)

	windows := availabilityrepo.NewMongoWindowRepository(cfg)
	availability := availabilityservice.NewAvailabilityService(
		windows,
		resources,
		availabilityvalidator.NewWindowValidator(cfg.Log),
		cfg,
	)

	publisher, closePublisher := initPublisher(cfg)
	bookings := bookingsservice.NewBookingService(
		bookingsrepo.NewMongoBookingRepository(cfg),
		bookingsrepo.NewBookingLockRepository(cfg),
		windows,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)

	workflow := workflowservice.NewWorkflowService(
		initSessionStore(cfg),
		availability,
		resources,
		advisory.NewSimulated(cfg),
		payment.NewGateway(cfg, cfg.Log),
		bookings,
		cfg,
	)
	cfg.Log.Info("Services initialized",
		"database", cfg.MongoDatabaseName,
		"session_store", cfg.SessionStore,
		"payment_provider", cfg.PaymentProvider,
	)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		app.NewHealthHandler(healthChecks(cfg), cfg.Log),
		resourceshandler.NewResourceHandler(resources, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availability, cfg.JWTSecret, cfg.Log),
		bookingshandler.NewBookingHandler(bookings, cfg.Log),
		workflowhandler.NewSessionHandler(workflow, cfg.Log),
	)
	serverApp.OnShutdown(closePublisher)
	serverApp.OnShutdown(cfg.GracefulShutdown)
	serverApp.Run()
}

func initSessionStore(cfg *config.Config) store.SessionStore {
	if cfg.SessionStore == config.SessionStoreMemory {
		cfg.Log.Warn("Using in-memory session store, sessions are lost on restart and not shared between replicas")
		return store.NewMemorySessionStore(cfg.SessionTTL, cfg.BusyLockTTL)
	}
	return store.NewRedisSessionStore(cfg)
}

func initPublisher(cfg *config.Config) (bookingsevents.Publisher, func()) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events are not published")
		return bookingsevents.NoopPublisher{}, func() {}
	}

	producer, err := kafka.NewProducer(cfg.Kafka, cfg.Kafka.BookingTopic, cfg.Kafka.BookingDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))

	return bookingsevents.NewKafkaPublisher(producer, cfg.Log), func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
}

func healthChecks(cfg *config.Config) map[string]app.Pinger {
	checks := map[string]app.Pinger{
		"mongo": func(ctx context.Context) error { return cfg.Client.Mongo.Ping(ctx, nil) },
	}
	if cfg.Client.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return cfg.Client.Redis.Ping(ctx).Err() }
	}
	return checks
}
