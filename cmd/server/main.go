package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/minaret-io/minaret/internal/boards"
	"github.com/minaret-io/minaret/internal/db"
	"github.com/minaret-io/minaret/internal/notify"
	"github.com/minaret-io/minaret/internal/push"
	"github.com/minaret-io/minaret/internal/redis"
	"github.com/minaret-io/minaret/internal/tasks"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	env := LoadEnvironment()
	if env.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// initialize PostgreSQL
	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	// run pending migrations
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	store := db.NewStore(db.DB)

	// cache is optional; sweeps fall back to SQL without it
	if env.RedisAddress != "" {
		redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)
	}

	loc, err := time.LoadLocation(env.PrayerTZ)
	if err != nil {
		log.Fatal().Err(err).Str("tz", env.PrayerTZ).Msg("invalid prayer timezone")
	}

	queueClient := tasks.NewHTTPClient(env.TaskQueueURL, 10*time.Second)
	scheduler := notify.NewTaskScheduler(queueClient, env.DispatchURL)
	sweeper := notify.NewSweeper(store, scheduler, loc)
	sender := push.NewGatewayClient(env.PushGatewayURL, env.PushGatewayKey, 10*time.Second)

	var publisher *boards.Publisher
	if env.BoardsBrokerURL != "" {
		publisher, err = boards.NewPublisher(env.BoardsBrokerURL, "minaret-server")
		if err != nil {
			log.Error().Err(err).Msg("board publishing disabled")
			publisher = nil
		}
	}

	// the nightly sweep runs in the operating timezone so "shortly past
	// midnight" means the mosques' midnight, not the host's
	runner := cron.New(cron.WithLocation(loc))
	if _, err := runner.AddFunc(env.DailySweepCron, func() {
		sweeper.SweepAll(context.Background())
		if publisher != nil {
			publisher.PublishAll(store, loc)
		}
	}); err != nil {
		log.Fatal().Err(err).Str("cron", env.DailySweepCron).Msg("invalid sweep schedule")
	}
	runner.Start()

	// a restart mid-day should not wait for tomorrow's cron
	go sweeper.SweepAll(context.Background())

	r := gin.Default()
	RegisterRoutes(r, env, store, sweeper, sender)

	srv := &http.Server{Addr: env.ServerAddress, Handler: r}
	go func() {
		log.Info().Str("addr", env.ServerAddress).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	log.Info().Msg("shutting down")

	<-runner.Stop().Done()
	if publisher != nil {
		publisher.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
