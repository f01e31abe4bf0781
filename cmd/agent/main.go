package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/omix2003/courierlink/internal/backend"
	"github.com/omix2003/courierlink/internal/config"
	"github.com/omix2003/courierlink/internal/logger"
	"github.com/omix2003/courierlink/internal/model"
	"github.com/omix2003/courierlink/internal/realtime"
	"github.com/omix2003/courierlink/internal/repository/sqlite"
	"github.com/omix2003/courierlink/internal/service"
	"github.com/omix2003/courierlink/internal/session"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)
	logger.Info("starting courierlink agent", "version", buildVersion, "build_date", buildDate)

	if cfg.AuthToken == "" {
		logger.Fatal("AUTH_TOKEN is required")
	}
	sess := session.New(logger)
	if err := sess.SetToken(cfg.AuthToken); err != nil {
		logger.Fatal("failed to bind auth token", "error", err)
	}

	conn, err := sqlite.NewConnection(ctx, cfg.History.DBPath)
	if err != nil {
		logger.Fatal("failed to open scan history database", "error", err)
	}
	defer conn.Close()

	historyRepo := sqlite.NewScanHistoryRepository(conn.DB)
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, sess, logger.WithComponent("backend"))

	manager := realtime.NewManager(realtime.NewWebsocketDialer(), sess, realtime.Config{
		URL:                  cfg.Realtime.URL + cfg.Realtime.Path,
		MaxReconnectAttempts: cfg.Realtime.MaxReconnectAttempts,
		BaseDelay:            cfg.Realtime.ReconnectBaseDelay,
		MaxDelay:             cfg.Realtime.ReconnectMaxDelay,
	}, logger.WithComponent("realtime"))
	manager.SetErrorHandler(func(err error) {
		logger.Warn("realtime error", "error", err)
	})
	sess.OnTeardown(manager.Disconnect)

	unsubOrders := manager.Subscribe(model.EventOrderUpdated, func(payload any) {
		if u, ok := payload.(model.OrderUpdate); ok {
			logger.Info("order updated", "order_id", u.OrderID, "status", string(u.Status))
		}
	})
	defer unsubOrders()

	unsubLocations := manager.Subscribe(model.EventLocationUpdated, func(payload any) {
		if u, ok := payload.(model.LocationUpdate); ok {
			logger.Info("location updated", "order_id", u.OrderID, "lat", u.Latitude, "lng", u.Longitude)
		}
	})
	defer unsubLocations()

	manager.Connect(ctx)

	resolver := service.NewScanResolver(client, historyRepo, logger.WithComponent("scan"))
	go runManualEntry(ctx, resolver)

	<-ctx.Done()
	logger.Info("shutting down")
	sess.Close()
}

// runManualEntry reads codes from stdin and resolves them, printing the
// matched order. Lines prefixed with "qr " resolve through the QR endpoint;
// everything else is treated as a barcode.
func runManualEntry(ctx context.Context, resolver *service.ScanResolver) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		kind := model.CodeKindBarcode
		if rest, ok := strings.CutPrefix(line, "qr "); ok {
			kind = model.CodeKindQR
			line = rest
		}

		err := resolver.Resolve(ctx, line, kind,
			func(order model.OrderSummary) {
				fmt.Printf("order %s (%s): %s, %s\n", order.ID, order.TrackingNumber, order.Status, order.Address)
			},
			func(message string) {
				fmt.Println(message)
			},
		)
		if errors.Is(err, model.ErrResolveInFlight) {
			fmt.Println("a lookup is already running, wait for it to finish")
		}
	}
}
