package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"
	EnvStaffCacheTTL = "STAFF_CACHE_TTL"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout  = "REQUEST_TIMEOUT"
	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvWatchSource           = "WATCH_SOURCE"
	EnvBookingChangesTopic   = "BOOKING_CHANGES_TOPIC"
	EnvBookingChangesGroupID = "BOOKING_CHANGES_GROUP_ID"
	EnvBookingChangesDLQ     = "BOOKING_CHANGES_DLQ_TOPIC"
	EnvJobEventsTopic        = "JOB_EVENTS_TOPIC"
	EnvWatcherConcurrency    = "WATCHER_CONCURRENCY"
	EnvMaterializeTimeout    = "MATERIALIZE_TIMEOUT"
	EnvJobTemplatesFile      = "JOB_TEMPLATES_FILE"

	EnvScoringWeightProximity    = "SCORING_WEIGHT_PROXIMITY"
	EnvScoringWeightWorkload     = "SCORING_WEIGHT_WORKLOAD"
	EnvScoringWeightSkill        = "SCORING_WEIGHT_SKILL"
	EnvScoringWeightExperience   = "SCORING_WEIGHT_EXPERIENCE"
	EnvScoringWeightAvailability = "SCORING_WEIGHT_AVAILABILITY"
	EnvScoringCriticalRadiusKm   = "SCORING_CRITICAL_RADIUS_KM"
	EnvScoringDefaultRadiusKm    = "SCORING_DEFAULT_RADIUS_KM"
	EnvScoringOutOfRadiusPenalty = "SCORING_OUT_OF_RADIUS_PENALTY"
	EnvScoringSkillPenalty       = "SCORING_SPECIALIZED_SKILL_PENALTY"
	EnvScoringBaselineRating     = "SCORING_BASELINE_RATING"

	EnvAnalyticsDefaultWindow = "ANALYTICS_DEFAULT_WINDOW"
)
