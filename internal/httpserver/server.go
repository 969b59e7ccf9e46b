// Package httpserver exposes the health check and the admin API.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/w3wave/social-digest/internal/pipeline"
	"github.com/w3wave/social-digest/pkg/config"
	"github.com/w3wave/social-digest/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	LC       fx.Lifecycle
	Config   *config.Config
	Logger   logger.Logger
	Pipeline pipeline.Client
}

type Server struct {
	srv    *http.Server
	logger logger.Logger
}

func New(opts Opts) *Server {
	if opts.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log := opts.Logger.WithComponent("HTTPServer")
	s := &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Config.App.Port),
			Handler:           NewRouter(opts.Pipeline, log, opts.Config.App.AdminToken, opts.Config.Digest.MinEngagement),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log,
	}

	opts.LC.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
	return s
}

func (s *Server) Start(context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.srv.Addr, err)
	}

	s.logger.Info("Starting server", "addr", s.srv.Addr)
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server stopped unexpectedly", "error", err)
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping server")
	return s.srv.Shutdown(ctx)
}

// NewRouter builds the gin engine. Admin routes answer 403 when token is empty.
// minEngagement is the preview threshold when the request does not set one.
func NewRouter(p pipeline.Client, log logger.Logger, token string, minEngagement int) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	h := &handler{pipeline: p, logger: log, minEngagement: minEngagement}

	admin := r.Group("/admin", AuthRequired(token))
	admin.POST("/run", h.run)
	admin.POST("/reset", h.reset)
	admin.GET("/reports/:date", h.reports)
	admin.GET("/posts/:date", h.posts)

	return r
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.URL.Path == "/healthz" {
			return
		}
		log.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Millisecond).String(),
		)
	}
}
