package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "villaops"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr     = ""
	DefaultRedisDB       = 0
	DefaultStaffCacheTTL = 30 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout  = 30 * time.Second
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	WatchSourceChangeStream = "changestream"
	WatchSourceKafka        = "kafka"
	WatchSourceNone         = "none"

	DefaultWatchSource           = WatchSourceChangeStream
	DefaultBookingChangesTopic   = "booking-changes"
	DefaultBookingChangesGroupID = "villaops-job-scheduler"
	DefaultBookingChangesDLQ     = "booking-changes-dlq"
	DefaultJobEventsTopic        = "booking-jobs"
	DefaultWatcherConcurrency    = 8
	DefaultMaterializeTimeout    = 20 * time.Second

	// Scoring weights are product-tunable; these are the starting point.
	DefaultScoringWeightProximity    = 0.30
	DefaultScoringWeightWorkload     = 0.25
	DefaultScoringWeightSkill        = 0.25
	DefaultScoringWeightExperience   = 0.15
	DefaultScoringWeightAvailability = 0.05
	DefaultScoringCriticalRadiusKm   = 5.0
	DefaultScoringDefaultRadiusKm    = 15.0
	DefaultScoringOutOfRadiusPenalty = 0.5
	DefaultScoringSkillPenalty       = 0.2
	DefaultScoringBaselineRating     = 3.0

	DefaultAnalyticsDefaultWindow = 30 * 24 * time.Hour
)
