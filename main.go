package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"snapsight/app/client/vision"
	"snapsight/app/config"
	"snapsight/app/server"
	"snapsight/app/service/analyzer"
	"snapsight/app/service/chat"
	"snapsight/app/service/history"
	"snapsight/app/service/mcptools"
	"snapsight/app/service/queue"
	"snapsight/app/service/storage"
	"snapsight/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, storage.New)
	do.Provide(di, queue.New)
	do.Provide(di, chat.New)
	do.Provide(di, history.New)
	do.Provide(di, vision.New)
	do.Provide(di, analyzer.New)
	do.Provide(di, mcptools.New)
	do.Provide(di, server.New)

	slog.Info("Service started", "provider", cfg.Provider.Name)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	group, groupCtx := errgroup.WithContext(appCtx)

	group.Go(func() error {
		return do.MustInvoke[*analyzer.Service](di).Run(groupCtx)
	})
	group.Go(func() error {
		return do.MustInvoke[*server.Server](di).Run(groupCtx)
	})
	group.Go(func() error {
		return do.MustInvoke[*mcptools.Service](di).Run(groupCtx)
	})

	if err = group.Wait(); err != nil {
		log.Fatalf("service failed: %v", err)
	}
}
