package cmd

import (
	"context"
	"fmt"
	"time"

	"forex-signals/internal/delivery/http"
	"forex-signals/pkg/logger"
	"forex-signals/pkg/middleware"
)

type HTTPServer struct {
	ctx     context.Context
	appDep  *AppDependency
	handler *http.HttpAPIHandler
}

func NewHTTPServer(ctx context.Context, appDep *AppDependency, handler *http.HttpAPIHandler) *HTTPServer {
	return &HTTPServer{
		ctx:     ctx,
		appDep:  appDep,
		handler: handler,
	}
}

func (s *HTTPServer) Start() error {
	s.appDep.log.Info("Starting HTTP server", logger.IntField("port", s.appDep.cfg.API.Port))

	s.appDep.echo.Use(middleware.NewRateLimiterMiddleware())
	s.handler.SetupRoutes()

	return s.appDep.echo.Start(fmt.Sprintf(":%d", s.appDep.cfg.API.Port))
}

func (s *HTTPServer) Stop() error {
	s.appDep.log.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	if err := s.appDep.echo.Shutdown(ctx); err != nil {
		s.appDep.log.Error("Error while stopping HTTP server", logger.ErrorField(err))
		return err
	}

	s.appDep.log.Info("HTTP server stopped successfully")
	return nil
}
