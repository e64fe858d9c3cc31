package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/KavishaShah6/portfolio/internal/config"
	"github.com/KavishaShah6/portfolio/internal/content"
	"github.com/KavishaShah6/portfolio/internal/logging"
	"github.com/KavishaShah6/portfolio/internal/metrics"
	"github.com/KavishaShah6/portfolio/internal/store"
	"github.com/KavishaShah6/portfolio/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.LogLevel, cfg.Debug())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := content.Load()
	if err != nil {
		return err
	}

	// Statistics are optional; the page still serves without a database.
	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error("open database, statistics disabled", zap.Error(err))
		st = nil
	} else {
		defer st.Close()
	}

	m, err := metrics.New()
	if err != nil {
		return err
	}

	srv, err := web.New(web.Options{
		Config:  cfg,
		Logger:  logger,
		Catalog: catalog,
		Store:   st,
		Metrics: m,
		Clock:   clockwork.NewRealClock(),
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
