// Package server implements the command that runs the authentication server.
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"authgate/internal/application/sessions"
	"authgate/internal/infrastructure/config"
	"authgate/internal/infrastructure/database"
	"authgate/internal/infrastructure/migration"
	"authgate/internal/infrastructure/repository"
	httpRouter "authgate/internal/interfaces/http"
	"authgate/internal/shared/logger"
)

var (
	configFile string
	forceAuth  bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the authentication server",
		Long:  `Start the authgate HTTP server with the given configuration file.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "server_config.json", "Path to the server configuration file")
	cmd.Flags().BoolVar(&forceAuth, "force-authentication", false, "Require authentication even if the configuration disables it")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("starting server", "config", configFile, "force_auth", forceAuth)

	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		logger.Error("failed to initialize database", "error", err)
		return err
	}
	defer database.Close()

	if err := migration.Run(database.Get()); err != nil {
		logger.Error("failed to run database migrations", "error", err)
		return err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	log := logger.NewLogger()
	db := database.Get()

	repos := sessions.Repositories{
		Records:           repository.NewSessionRecordRepository(db),
		AccessTokens:      repository.NewPersonalAccessTokenRepository(db),
		OAuthTokens:       repository.NewOAuthTokenRepository(db),
		SystemPermissions: repository.NewSystemPermissionRepository(db),
	}

	manager, err := sessions.NewWithConfig(configFile, cfg, repos, sessions.Capabilities{}, forceAuth, log)
	if err != nil {
		logger.Error("failed to build session manager", "error", err)
		return err
	}

	router := httpRouter.NewRouter(manager, redisClient, cfg, log)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := listen(manager, srv.Addr)
	if err != nil {
		logger.Error("failed to listen", "address", srv.Addr, "error", err)
		return err
	}

	go func() {
		logger.Info("server listening",
			"address", srv.Addr, "workers", manager.WorkerProcesses())
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}()

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	go func() {
		for range reload {
			logger.Info("received SIGHUP, reloading configuration")
			if err := manager.ReloadConfig(); err != nil {
				logger.Error("configuration reload failed", "error", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced server shutdown", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}

// listen opens the server socket with the configured TCP keepalive policy.
func listen(manager *sessions.Manager, addr string) (net.Listener, error) {
	lc := net.ListenConfig{}
	if manager.IsKeepaliveEnabled() {
		lc.KeepAlive = time.Duration(manager.KeepaliveIdle()) * time.Second
	} else {
		lc.KeepAlive = -1
	}
	return lc.Listen(context.Background(), "tcp", addr)
}
