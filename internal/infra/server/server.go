// Package server owns the HTTP listener lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Registrar is implemented by every controller that mounts routes.
type Registrar interface {
	Register(r gin.IRouter)
}

// NewEngine builds the gin engine with the middleware chain and mounts the
// controllers.
func NewEngine(mode string, middlewares []gin.HandlerFunc, controllers ...Registrar) *gin.Engine {
	gin.SetMode(mode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middlewares...)
	for _, ctrl := range controllers {
		ctrl.Register(engine)
	}
	return engine
}

// Server wraps http.Server with logging and graceful shutdown.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

func New(port int, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", slog.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.srv.Shutdown(ctx)
}
