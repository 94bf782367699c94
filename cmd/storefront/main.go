// Package main запускает агент синхронизации клиента витрины.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nrxshop/storefront-system/internal/api"
	"github.com/nrxshop/storefront-system/internal/config"
	"github.com/nrxshop/storefront-system/internal/notify"
	"github.com/nrxshop/storefront-system/internal/service"
	"github.com/nrxshop/storefront-system/internal/session"
	"github.com/nrxshop/storefront-system/internal/storage"
	"github.com/nrxshop/storefront-system/internal/store"
)

// logNotifier выводит системные уведомления в журнал: у headless-агента нет
// собственной платформы уведомлений.
type logNotifier struct {
	logger *zap.Logger
}

func (n *logNotifier) Notify(title, message string) error {
	n.logger.Info("notification", zap.String("title", title), zap.String("message", message))
	return nil
}

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	backendStore, err := storage.NewFileBackend(cfg.StateDir)
	if err != nil {
		sugar.Fatalw("state dir initialization error", "error", err.Error())
	}

	cart := store.NewCart(backendStore, logger)
	wishlist := store.NewWishlist(backendStore, logger)
	notifications := store.NewNotifications(backendStore, logger)
	dispatcher := notify.NewDispatcher(notifications, &logNotifier{logger: logger}, logger)

	sess := session.New()
	if cfg.SessionToken != "" {
		sess.SetToken(cfg.SessionToken, cfg.UserID)
	}

	client := api.NewClient(cfg.APIBaseURL, logger)

	svc := service.NewService(client, sess, cart, wishlist, dispatcher, service.Intervals{
		Products:      cfg.ProductsInterval,
		Settings:      cfg.SettingsInterval,
		Notifications: cfg.NotificationsInterval,
		Orders:        cfg.OrdersInterval,
	}, logger)
	defer svc.Close()

	svc.SetProfile(service.Profile{
		UserID: cfg.UserID,
		Email:  cfg.UserEmail,
		Name:   cfg.UserName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting storefront sync", "api", cfg.APIBaseURL, "state", cfg.StateDir)
		svc.StartSync(ctx)
		<-ctx.Done()
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down sync...")
		svc.Close()
		sugar.Info("sync stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
