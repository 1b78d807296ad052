package server

import (
	"context"
	"log/slog"
	"snapsight/app/config"
	"snapsight/app/service/analyzer"
	"snapsight/app/service/chat"
	"snapsight/app/service/history"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
)

// Server is the HTTP bridge between the capture UI and the analysis
// worker. It mirrors the extension message contract: the analyze call
// only acknowledges, results arrive through the archive and the badge.
type Server struct {
	cfg *config.Config
	app *fiber.App

	analyzerSvc *analyzer.Service
	historySvc  *history.Service
	chatSvc     *chat.Service
}

func New(di *do.Injector) (*Server, error) {
	s := &Server{
		cfg:         do.MustInvoke[*config.Config](di),
		analyzerSvc: do.MustInvoke[*analyzer.Service](di),
		historySvc:  do.MustInvoke[*history.Service](di),
		chatSvc:     do.MustInvoke[*chat.Service](di),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             32 * 1024 * 1024, // screenshots travel as base64
	})

	api := app.Group("/api")
	api.Post("/analyze", s.handleAnalyze)
	api.Get("/status", s.handleStatus)
	api.Delete("/badge", s.handleClearBadge)
	api.Get("/responses", s.handleListResponses)
	api.Delete("/responses/:id", s.handleRemoveResponse)
	api.Delete("/responses", s.handleClearResponses)
	api.Post("/chat/reset", s.handleResetChat)

	s.app = app

	return s, nil
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- s.app.Listen(s.cfg.Server.Listen)
	}()

	slog.Info("API server started", "listen", s.cfg.Server.Listen)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.app.ShutdownWithTimeout(5 * time.Second)
	}
}
