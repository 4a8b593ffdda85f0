package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/metrics"
	"github.com/danielhkuo/campus-vote/middleware"
	"github.com/danielhkuo/campus-vote/notify"
	"github.com/danielhkuo/campus-vote/router"
	"github.com/danielhkuo/campus-vote/store"
	"github.com/danielhkuo/campus-vote/tally"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if cfg.PrintAdminKey {
		fmt.Println(auth.GenerateAdminKey(cfg.ElectionName, cfg.AdminKeySalt))
		return
	}

	// Connect to the database; driver names match the dialect names
	dbConn, err := sql.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// sqlite serializes writers anyway
	if cfg.DatabaseType == db.DialectSQLite {
		dbConn.SetMaxOpenConns(1)
	}

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Tally engine and live view
	m := metrics.New(prometheus.DefaultRegisterer)
	s := store.New(dbConn)
	engine := tally.NewEngine(s, s, tally.Options{
		FetchTimeout: cfg.FetchTimeout,
		Logger:       slog.Default(),
		Metrics:      m,
	})
	live := tally.NewLive(engine, slog.Default(), m)
	hub := notify.NewHub()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	events, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	liveDone := make(chan struct{})
	go func() {
		defer close(liveDone)
		live.Run(ctx, cfg.PollInterval, events)
	}()

	// Create router
	mux := router.NewRouter(dbConn, cfg, router.Deps{
		Engine:   engine,
		Live:     live,
		Events:   hub,
		Gatherer: prometheus.DefaultGatherer,
	})

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		stop()

		// Result streams only end when their clients go away
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "election", cfg.ElectionName)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}

	stop()
	<-liveDone
}
