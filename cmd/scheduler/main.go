package main

import (
	"context"

	analyticshandler "villaops/internal/analytics/handler"
	analyticsservice "villaops/internal/analytics/service"
	healthhandler "villaops/internal/health/handler"
	"villaops/internal/jobs/catalog"
	"villaops/internal/jobs/events"
	jobshandler "villaops/internal/jobs/handler"
	"villaops/internal/jobs/repository"
	"villaops/internal/jobs/scoring"
	"villaops/internal/jobs/service"
	"villaops/internal/jobs/validator"
	"villaops/internal/jobs/watcher"
	propertyrepo "villaops/internal/properties/repository"
	staffrepo "villaops/internal/staff/repository"
	"villaops/pkg/app"
	"villaops/pkg/config"
	"villaops/pkg/kafka"
	kafka_config "villaops/pkg/kafka/config"
	kafka_middleware "villaops/pkg/kafka/middleware"
	"villaops/pkg/metrics"
)

const ServiceName = "scheduler"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	metrics.Register()

	serverApp := app.NewApplication(cfg)

	jobCatalog := loadCatalog(cfg)
	kafkaCfg := loadKafka(cfg)
	publisher := initPublisher(cfg, kafkaCfg, serverApp)

	store := repository.NewMongoStore(cfg)
	directory := initDirectory(cfg)
	properties := propertyrepo.NewMongoLookup(cfg)
	scorer := scoring.New(scoring.ParamsFromConfig(cfg))
	jobValidator := validator.New()

	materializer := service.NewMaterializer(store, directory, properties, jobCatalog, scorer, jobValidator, publisher, cfg)
	tasks := service.NewTaskService(store, directory, properties, jobCatalog, scorer, jobValidator, cfg)
	analytics := analyticsservice.NewAnalyticsService(store, cfg)

	bookingWatcher := watcher.New(initSource(cfg, kafkaCfg), materializer, cfg)
	serverApp.AddWorker("booking-watcher", bookingWatcher.Run)

	serverApp.SetApp(
		healthChecks(cfg),
		jobshandler.NewJobHandler(bookingWatcher, tasks, cfg.Log),
		analyticshandler.NewAnalyticsHandler(analytics, cfg.Log),
	)

	cfg.Log.Info("Scheduler service initialized",
		"database", cfg.MongoDatabaseName,
		"catalog_version", jobCatalog.Version(),
		"templates", jobCatalog.Len(),
		"watch_source", cfg.WatchSource,
	)
	serverApp.Run()
}

func loadCatalog(cfg *config.Config) *catalog.Catalog {
	if cfg.JobTemplatesFile == "" {
		return catalog.Default()
	}
	c, err := catalog.LoadFile(cfg.JobTemplatesFile)
	if err != nil {
		cfg.Log.Fatal("Failed to load job templates", "file", cfg.JobTemplatesFile, "error", err)
	}
	return c
}

// loadKafka returns nil when neither the watcher nor the event publisher
// needs a broker.
func loadKafka(cfg *config.Config) *kafka_config.Config {
	if cfg.WatchSource != config.WatchSourceKafka && cfg.JobEventsTopic == "" {
		return nil
	}
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)
	return kafkaCfg
}

func initPublisher(cfg *config.Config, kafkaCfg *kafka_config.Config, serverApp *app.Application) service.EventPublisher {
	if cfg.JobEventsTopic == "" {
		cfg.Log.Info("Job events topic not configured, events disabled")
		return nil
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, cfg.JobEventsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create job events producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
	}
	serverApp.OnShutdown("job events producer", producer.Close)

	return events.NewKafkaPublisher(producer)
}

func initDirectory(cfg *config.Config) staffrepo.Directory {
	directory := staffrepo.NewMongoDirectory(cfg)
	if cfg.Client.Redis == nil {
		return directory
	}
	return staffrepo.NewCachedDirectory(directory, cfg.Client.Redis, cfg.StaffCacheTTL, cfg.Log)
}

func initSource(cfg *config.Config, kafkaCfg *kafka_config.Config) watcher.Source {
	switch cfg.WatchSource {
	case config.WatchSourceKafka:
		return watcher.NewKafkaSource(cfg, kafkaCfg)
	case config.WatchSourceChangeStream:
		return watcher.NewChangeStreamSource(cfg)
	default:
		cfg.Log.Info("Booking watcher disabled, manual triggers only")
		return nil
	}
}

func healthChecks(cfg *config.Config) map[string]healthhandler.Check {
	checks := map[string]healthhandler.Check{
		"mongo": func(ctx context.Context) error {
			return cfg.Client.Mongo.Ping(ctx, nil)
		},
	}
	if cfg.Client.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return cfg.Client.Redis.Ping(ctx).Err()
		}
	}
	return checks
}
