package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type Blog struct {
	db        *sql.DB
	config    *Config
	sessions  *scs.SessionManager
	templates map[string]*template.Template
	logger    *logrus.Logger
}

func NewBlog(db *sql.DB, cfg *Config, logger *logrus.Logger) *Blog {
	return &Blog{
		db:        db,
		config:    cfg,
		sessions:  newSessionManager(db, cfg.SessionLifetime, !cfg.IsDevelopment()),
		templates: loadTemplates(),
		logger:    logger,
	}
}

var rootCmd = &cobra.Command{
	Use:   "blog",
	Short: "A small server-rendered blog with comments",
	Long: `blog serves a blog where an administrator writes posts and registered
readers comment on them.

Configuration is read from the environment (and an optional .env file):
  BLOG_SESSION_SECRET    secret key, at least 32 bytes (required for serve)
  BLOG_DB_PATH           SQLite database path (default: blog.db)
  BLOG_ADDR              listen address (default: :8080)
  BLOG_ENV               development|production (default: development)
  BLOG_LOG_LEVEL         log level (default: info)
  BLOG_LOG_FORMAT        text|json (default: text)`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openMaintenanceDB()
		if err != nil {
			return err
		}
		defer db.Close()

		return initDB(db)
	},
}

var grantAdminCmd = &cobra.Command{
	Use:   "grant-admin <email>",
	Short: "Give an existing user the admin role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeRole(cmd, args[0], RoleAdmin)
	},
}

var revokeAdminCmd = &cobra.Command{
	Use:   "revoke-admin <email>",
	Short: "Take the admin role away from a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeRole(cmd, args[0], RoleUser)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, grantAdminCmd, revokeAdminCmd)
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openMaintenanceDB() (*sql.DB, error) {
	cfg, err := loadDBConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(os.Stderr, "info", "text")
	if err != nil {
		return nil, err
	}
	goose.SetLogger(logger)

	return openDB(cfg.DBPath)
}

func changeRole(cmd *cobra.Command, email, role string) error {
	db, err := openMaintenanceDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := initDB(db); err != nil {
		return err
	}

	if err := setUserRole(cmd.Context(), db, email, role); err != nil {
		return fmt.Errorf("setting role of %s: %w", email, err)
	}

	cmd.Printf("%s is now %s\n", email, role)
	return nil
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	goose.SetLogger(logger)

	db, err := openDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err = initDB(db); err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}

	scheduler := newScheduler(db, logger)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer scheduler.Stop()

	blog := NewBlog(db, cfg, logger)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           blog.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr": cfg.Addr,
			"env":  cfg.Env,
		}).Info("server starting")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
