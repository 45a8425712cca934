package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Environment struct {
	Environment    string
	ServerAddress  string
	SecretKey      string
	DatabaseURL    string
	MigrationsPath string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	TaskQueueURL string
	DispatchURL  string

	PushGatewayURL string
	PushGatewayKey string

	PrayerTZ       string
	DailySweepCron string

	BoardsBrokerURL string
}

// LoadEnvironment reads and validates env vars. A .env file is honored
// when present so local runs don't need an exported environment.
func LoadEnvironment() Environment {
	_ = godotenv.Load()

	env := Environment{
		Environment:   os.Getenv("APP_ENV"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SecretKey:     os.Getenv("JWT_SECRET"),
		ServerAddress: os.Getenv("SERVER_ADDRESS"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),

		TaskQueueURL: os.Getenv("TASKQUEUE_URL"),
		DispatchURL:  os.Getenv("DISPATCH_URL"),

		PushGatewayURL: os.Getenv("PUSH_GATEWAY_URL"),
		PushGatewayKey: os.Getenv("PUSH_GATEWAY_KEY"),

		PrayerTZ:       os.Getenv("PRAYER_TZ"),
		DailySweepCron: os.Getenv("DAILY_SWEEP_CRON"),

		BoardsBrokerURL: os.Getenv("BOARDS_BROKER_URL"),
	}

	// Basic validation
	if env.DatabaseURL == "" || env.SecretKey == "" || env.ServerAddress == "" {
		log.Fatal().Msg("missing required environment variables")
	}
	if env.TaskQueueURL == "" || env.DispatchURL == "" || env.PushGatewayURL == "" {
		log.Fatal().Msg("missing task queue or push gateway environment variables")
	}

	if env.PrayerTZ == "" {
		env.PrayerTZ = "UTC"
	}
	if env.DailySweepCron == "" {
		// shortly past midnight, after venues publish the new day
		env.DailySweepCron = "15 0 * * *"
	}

	return env
}
