package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"audioscribe/internal/executor"
	"audioscribe/internal/handlers"
	"audioscribe/internal/logger"
	"audioscribe/internal/repository"
	"audioscribe/internal/repository/db"
	"audioscribe/internal/server"
	"audioscribe/internal/service"

	"github.com/spf13/viper"
)

const defaultJanitorTick = 1 * time.Minute

func main() {
	// load config.yml first so the log level is honored
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(viper.GetString("log.level"))

	// open DB
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, executor.New(), serviceConfig())
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start idle-session janitor
	go services.Janitor.Run(ctx, defaultJanitorTick)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// serviceConfig maps viper keys onto the service layer's settings.
func serviceConfig() service.Config {
	return service.Config{
		Auth: service.AuthConfig{
			SigningKey: viper.GetString("auth.signing_key"),
			TokenTTL:   viper.GetDuration("auth.token_ttl"),
		},
		Session: service.SessionConfig{
			TmpDir:      viper.GetString("session.tmp_dir"),
			IdleTTL:     viper.GetDuration("session.idle_ttl"),
			CallTimeout: viper.GetDuration("session.call_timeout"),
			MaxRetries:  viper.GetInt("session.max_retries"),
		},
		Whisper: service.WhisperConfig{
			BinaryPath: viper.GetString("whisper.binary_path"),
			ModelPath:  viper.GetString("whisper.model_path"),
			Language:   viper.GetString("whisper.language"),
			Threads:    viper.GetInt("whisper.threads"),
		},
		Summarizer: service.SummarizerConfig{
			BinaryPath: viper.GetString("summarizer.binary_path"),
		},
	}
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "audioscribe.db")
		dbPath = "audioscribe.db"
	}
	return db.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
