package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/minaret-io/minaret/internal/taskqueue"
)

func main() {
	var (
		addr   = flag.String("addr", ":8090", "HTTP bind address")
		dbPath = flag.String("db", "devqueue.db", "SQLite DB path")
		poll   = flag.Duration("poll", time.Second, "poll interval for due tasks")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=journal_mode(WAL)", *dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	defer db.Close()
	db.SetMaxOpenConns(1) // SQLite single writer

	if err := taskqueue.EnsureSchema(db); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}

	store := taskqueue.NewSQLiteStore(db)
	if n, err := store.RecoverStale(context.Background()); err == nil && n > 0 {
		log.Info().Int("recovered", n).Msg("recovered tasks stuck in delivering")
	}

	ctx, cancel := context.WithCancel(context.Background())
	dispatcher := taskqueue.NewDispatcher(store, *poll)
	go dispatcher.Run(ctx)

	srv := &http.Server{Addr: *addr, Handler: taskqueue.NewServer(store)}
	go func() {
		log.Info().Str("addr", *addr).Msg("task queue starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	log.Info().Msg("shutting down")
	cancel()
	ctxTimeout, cancelTimeout := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelTimeout()
	_ = srv.Shutdown(ctxTimeout)
}
