package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"villaops/pkg/client"
	"villaops/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StaffCacheTTL time.Duration

	Port     string
	LogLevel string

	RequestTimeout  time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	WatchSource           string
	BookingChangesTopic   string
	BookingChangesGroupID string
	BookingChangesDLQ     string
	JobEventsTopic        string
	WatcherConcurrency    int
	MaterializeTimeout    time.Duration
	JobTemplatesFile      string

	ScoringWeightProximity    float64
	ScoringWeightWorkload     float64
	ScoringWeightSkill        float64
	ScoringWeightExperience   float64
	ScoringWeightAvailability float64
	ScoringCriticalRadiusKm   float64
	ScoringDefaultRadiusKm    float64
	ScoringOutOfRadiusPenalty float64
	ScoringSkillPenalty       float64
	ScoringBaselineRating     float64

	AnalyticsDefaultWindow time.Duration

	Log    *logger.Logger
	Client *client.Client
}

// Load reads the environment (and a .env file when present), validates it and
// exits on invalid configuration.
func Load(serviceName string) *Config {
	cfg, err := FromEnv(serviceName)
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv builds a Config without exiting. The returned Config is usable for
// logging even when err is not nil.
func FromEnv(serviceName string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),
		StaffCacheTTL: getEnvDuration(EnvStaffCacheTTL, DefaultStaffCacheTTL),

		Port:     getEnvStr(EnvPort, DefaultPort),
		LogLevel: getEnvStr(EnvLogLevel, DefaultLogLevel),

		RequestTimeout:  getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		WatchSource:           strings.ToLower(getEnvStr(EnvWatchSource, DefaultWatchSource)),
		BookingChangesTopic:   getEnvStr(EnvBookingChangesTopic, DefaultBookingChangesTopic),
		BookingChangesGroupID: getEnvStr(EnvBookingChangesGroupID, DefaultBookingChangesGroupID),
		BookingChangesDLQ:     getEnvStr(EnvBookingChangesDLQ, DefaultBookingChangesDLQ),
		JobEventsTopic:        getEnvStr(EnvJobEventsTopic, DefaultJobEventsTopic),
		WatcherConcurrency:    getEnvNum(EnvWatcherConcurrency, DefaultWatcherConcurrency),
		MaterializeTimeout:    getEnvDuration(EnvMaterializeTimeout, DefaultMaterializeTimeout),
		JobTemplatesFile:      getEnvStr(EnvJobTemplatesFile, ""),

		ScoringWeightProximity:    getEnvFloat(EnvScoringWeightProximity, DefaultScoringWeightProximity),
		ScoringWeightWorkload:     getEnvFloat(EnvScoringWeightWorkload, DefaultScoringWeightWorkload),
		ScoringWeightSkill:        getEnvFloat(EnvScoringWeightSkill, DefaultScoringWeightSkill),
		ScoringWeightExperience:   getEnvFloat(EnvScoringWeightExperience, DefaultScoringWeightExperience),
		ScoringWeightAvailability: getEnvFloat(EnvScoringWeightAvailability, DefaultScoringWeightAvailability),
		ScoringCriticalRadiusKm:   getEnvFloat(EnvScoringCriticalRadiusKm, DefaultScoringCriticalRadiusKm),
		ScoringDefaultRadiusKm:    getEnvFloat(EnvScoringDefaultRadiusKm, DefaultScoringDefaultRadiusKm),
		ScoringOutOfRadiusPenalty: getEnvFloat(EnvScoringOutOfRadiusPenalty, DefaultScoringOutOfRadiusPenalty),
		ScoringSkillPenalty:       getEnvFloat(EnvScoringSkillPenalty, DefaultScoringSkillPenalty),
		ScoringBaselineRating:     getEnvFloat(EnvScoringBaselineRating, DefaultScoringBaselineRating),

		AnalyticsDefaultWindow: getEnvDuration(EnvAnalyticsDefaultWindow, DefaultAnalyticsDefaultWindow),

		Client: client.NewClient(),
	}
	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})

	return cfg, cfg.Validate()
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the staff cache. A blank address leaves caching disabled.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		cfg.Log.Info("Redis address not configured, staff cache disabled")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"StaffCacheTTL", cfg.StaffCacheTTL},
		{"RequestTimeout", cfg.RequestTimeout},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"MaterializeTimeout", cfg.MaterializeTimeout},
		{"AnalyticsDefaultWindow", cfg.AnalyticsDefaultWindow},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	switch cfg.WatchSource {
	case WatchSourceChangeStream, WatchSourceNone:
	case WatchSourceKafka:
		if cfg.BookingChangesTopic == "" {
			errors = append(errors, "BookingChangesTopic cannot be empty when WatchSource is kafka")
		}
		if cfg.BookingChangesGroupID == "" {
			errors = append(errors, "BookingChangesGroupID cannot be empty when WatchSource is kafka")
		}
	default:
		errors = append(errors, fmt.Sprintf("WatchSource must be one of [changestream, kafka, none], got: %s", cfg.WatchSource))
	}

	if cfg.WatcherConcurrency <= 0 {
		errors = append(errors, fmt.Sprintf("WatcherConcurrency must be positive, got: %d", cfg.WatcherConcurrency))
	}
	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}

	weights := []struct {
		name  string
		value float64
	}{
		{"ScoringWeightProximity", cfg.ScoringWeightProximity},
		{"ScoringWeightWorkload", cfg.ScoringWeightWorkload},
		{"ScoringWeightSkill", cfg.ScoringWeightSkill},
		{"ScoringWeightExperience", cfg.ScoringWeightExperience},
		{"ScoringWeightAvailability", cfg.ScoringWeightAvailability},
	}
	var weightSum float64
	for _, w := range weights {
		if w.value < 0 {
			errors = append(errors, fmt.Sprintf("%s cannot be negative, got: %g", w.name, w.value))
		}
		weightSum += w.value
	}
	if weightSum <= 0 {
		errors = append(errors, "Scoring weights must sum to a positive value")
	}
	if cfg.ScoringCriticalRadiusKm <= 0 || cfg.ScoringDefaultRadiusKm <= 0 {
		errors = append(errors, fmt.Sprintf("Scoring radii must be positive, got: critical=%g default=%g", cfg.ScoringCriticalRadiusKm, cfg.ScoringDefaultRadiusKm))
	}
	if cfg.ScoringOutOfRadiusPenalty < 0 || cfg.ScoringOutOfRadiusPenalty > 1 {
		errors = append(errors, fmt.Sprintf("ScoringOutOfRadiusPenalty must be within [0, 1], got: %g", cfg.ScoringOutOfRadiusPenalty))
	}
	if cfg.ScoringSkillPenalty < 0 || cfg.ScoringSkillPenalty > 1 {
		errors = append(errors, fmt.Sprintf("ScoringSkillPenalty must be within [0, 1], got: %g", cfg.ScoringSkillPenalty))
	}
	if cfg.ScoringBaselineRating < 0 || cfg.ScoringBaselineRating >= 5 {
		errors = append(errors, fmt.Sprintf("ScoringBaselineRating must be within [0, 5), got: %g", cfg.ScoringBaselineRating))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_enabled", cfg.RedisAddr != "",
		"staff_cache_ttl", cfg.StaffCacheTTL,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"watch_source", cfg.WatchSource,
		"booking_changes_topic", cfg.BookingChangesTopic,
		"job_events_topic", cfg.JobEventsTopic,
		"watcher_concurrency", cfg.WatcherConcurrency,
		"materialize_timeout", cfg.MaterializeTimeout,
		"job_templates_file", cfg.JobTemplatesFile,
		"scoring_weight_proximity", cfg.ScoringWeightProximity,
		"scoring_weight_workload", cfg.ScoringWeightWorkload,
		"scoring_weight_skill", cfg.ScoringWeightSkill,
		"scoring_weight_experience", cfg.ScoringWeightExperience,
		"scoring_weight_availability", cfg.ScoringWeightAvailability,
		"scoring_critical_radius_km", cfg.ScoringCriticalRadiusKm,
		"scoring_default_radius_km", cfg.ScoringDefaultRadiusKm,
		"analytics_default_window", cfg.AnalyticsDefaultWindow,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	if cfg.Client == nil {
		return
	}
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}
