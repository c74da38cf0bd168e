package main

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"apimocker/store"
)

// newApp builds the fiber application serving st.
func newApp(st *store.Store, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "apimocker",
		DisableStartupMessage: true,
		// Path parameters become collection names and ids kept in the store.
		// They are unescaped per parameter by the handlers, not here.
		Immutable:    true,
		ErrorHandler: errorHandler,
	})
	app.Use(requestLogger(logger))
	RegisterRoutes(app, newHandler(st, logger))
	return app
}

// startServer loads the data file and serves it until ctx is cancelled.
func startServer(ctx context.Context, cfg Config, logger *slog.Logger) error {
	sink := store.NewFileSink(cfg.File)
	st, err := store.Open(cfg.File,
		store.WithSink(sink),
		store.WithLogger(logger.With("component", componentStore)),
	)
	if err != nil {
		return err
	}

	app := newApp(st, logger)
	srvLog := logger.With("component", componentHTTPServer)
	logEndpoints(srvLog, st.Collections())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		srvLog.Info("mock server running", "addr", cfg.Addr(), "file", cfg.File)
		return app.Listen(cfg.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		srvLog.Info("shutting down")
		return app.Shutdown()
	})
	if cfg.Watch {
		g.Go(func() error {
			return watchFile(gctx, cfg.File, st, sink, logger)
		})
	}
	return g.Wait()
}
