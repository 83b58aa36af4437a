package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"

	"campusvoice/backend/internal/account"
	"campusvoice/backend/internal/api/handler"
	"campusvoice/backend/internal/complaint"
	"campusvoice/backend/internal/config"
	"campusvoice/backend/internal/localization"
	"campusvoice/backend/internal/logger"
	"campusvoice/backend/internal/media"
	"campusvoice/backend/internal/notify"
	"campusvoice/backend/internal/storage"
)

func main() {
	cmd := &cli.Command{
		Name:  "campusvoice",
		Usage: "campus complaint workflow API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			return serve(ctx, cfg)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("campusvoice: %v", err)
	}
}

func newNotifier(cfg config.Telegram) notify.Notifier {
	if cfg.Token == "" || cfg.ChatID == 0 {
		return notify.Noop{}
	}
	n, err := notify.NewTelegram(cfg.Token, cfg.ChatID)
	if err != nil {
		slog.Warn("telegram alerts disabled", "error", err)
		return notify.Noop{}
	}
	return n
}

func serve(ctx context.Context, cfg *config.Config) error {
	if _, err := logger.Setup(os.Stdout, cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	store, closeStore, err := storage.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	files, err := media.New(cfg.Media)
	if err != nil {
		return err
	}

	complaints := complaint.NewService(store,
		complaint.WithMedia(files),
		complaint.WithNotifier(newNotifier(cfg.Telegram)),
	)
	accounts := account.NewService(store, cfg.Auth)
	h := handler.NewHandler(complaints, accounts, localization.Default(), cfg.Auth.CookieName)

	gin.SetMode(cfg.Server.Mode)
	static := handler.StaticMedia{}
	if cfg.Media.Backend == "local" {
		static = handler.StaticMedia{URLPrefix: cfg.Media.URLPrefix, Dir: cfg.Media.Dir}
	}
	router := handler.NewRouter(h, static)

	server := &http.Server{
		Addr:           cfg.Server.Addr,
		Handler:        handler.WithCORS(router, cfg.Server.CORSOrigins),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", cfg.Server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
