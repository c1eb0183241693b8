// Package config loads application configuration via spf13/viper:
// viper.AutomaticEnv() plus explicit SetDefault/BindEnv calls per field,
// then a typed struct populated with viper.Unmarshal.
package config

import (
	"github.com/spf13/viper"
)

// Config holds every setting the service needs plus the scheduler, outbox,
// and messaging settings the ambient/domain stack expansion adds.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	OutboxPollIntervalSeconds int `mapstructure:"OUTBOX_POLL_INTERVAL_SECONDS"`
	OutboxBatchSize           int `mapstructure:"OUTBOX_BATCH_SIZE"`
	OutboxMaxRetries          int `mapstructure:"OUTBOX_MAX_RETRIES"`

	SchedulerWorkerCount             int    `mapstructure:"SCHEDULER_WORKER_COUNT"`
	SchedulerRetryAttempts           int    `mapstructure:"SCHEDULER_RETRY_ATTEMPTS"`
	SchedulerPollIntervalSeconds     int    `mapstructure:"SCHEDULER_POLL_INTERVAL_SECONDS"`
	SchedulerInvisibilityTimeoutSecs int    `mapstructure:"SCHEDULER_INVISIBILITY_TIMEOUT_SECONDS"`
	SchedulerInstanceID              string `mapstructure:"SCHEDULER_INSTANCE_ID"`

	SchedulerJobDailyStatementCron  string `mapstructure:"SCHEDULER_JOB_DAILYSTATEMENTGENERATION"`
	SchedulerJobMonthlyInterestCron string `mapstructure:"SCHEDULER_JOB_MONTHLYINTERESTCALCULATION"`
	SchedulerJobAccountCleanupCron  string `mapstructure:"SCHEDULER_JOB_ACCOUNTCLEANUP"`

	RedisURL         string `mapstructure:"REDIS_URL"`
	RedisLeasePrefix string `mapstructure:"REDIS_LEASE_PREFIX"`

	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	JWTSigningSecret string `mapstructure:"JWT_SIGNING_SECRET"`

	LogFormat string `mapstructure:"LOG_FORMAT"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
}

// Load reads configuration from environment variables, applying the
// defaults below.
func Load() (*Config, error) {
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("OUTBOX_POLL_INTERVAL_SECONDS", 30)
	viper.SetDefault("OUTBOX_BATCH_SIZE", 20)
	viper.SetDefault("OUTBOX_MAX_RETRIES", 3)

	viper.SetDefault("SCHEDULER_WORKER_COUNT", 5)
	viper.SetDefault("SCHEDULER_RETRY_ATTEMPTS", 3)
	viper.SetDefault("SCHEDULER_POLL_INTERVAL_SECONDS", 2)
	viper.SetDefault("SCHEDULER_INVISIBILITY_TIMEOUT_SECONDS", 300)
	viper.SetDefault("SCHEDULER_INSTANCE_ID", "corebank-primary")

	viper.SetDefault("SCHEDULER_JOB_DAILYSTATEMENTGENERATION", "0 2 * * *")
	viper.SetDefault("SCHEDULER_JOB_MONTHLYINTERESTCALCULATION", "0 1 1 * *")
	viper.SetDefault("SCHEDULER_JOB_ACCOUNTCLEANUP", "0 0 * * 0")

	viper.SetDefault("REDIS_LEASE_PREFIX", "corebank:scheduler:lease")

	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.AutomaticEnv()

	for _, key := range []string{
		"SERVER_PORT", "DATABASE_URL",
		"OUTBOX_POLL_INTERVAL_SECONDS", "OUTBOX_BATCH_SIZE", "OUTBOX_MAX_RETRIES",
		"SCHEDULER_WORKER_COUNT", "SCHEDULER_RETRY_ATTEMPTS", "SCHEDULER_POLL_INTERVAL_SECONDS",
		"SCHEDULER_INVISIBILITY_TIMEOUT_SECONDS", "SCHEDULER_INSTANCE_ID",
		"SCHEDULER_JOB_DAILYSTATEMENTGENERATION", "SCHEDULER_JOB_MONTHLYINTERESTCALCULATION",
		"SCHEDULER_JOB_ACCOUNTCLEANUP",
		"REDIS_URL", "REDIS_LEASE_PREFIX", "RABBITMQ_URL", "JWT_SIGNING_SECRET",
		"LOG_FORMAT", "LOG_LEVEL",
	} {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ScheduledJobs returns the recurring-id to cron-expression map, seeded
// from the three named schedules.
func (c *Config) ScheduledJobs() map[string]string {
	return map[string]string{
		"DailyStatementGeneration":   c.SchedulerJobDailyStatementCron,
		"MonthlyInterestCalculation": c.SchedulerJobMonthlyInterestCron,
		"AccountCleanup":             c.SchedulerJobAccountCleanupCron,
	}
}
