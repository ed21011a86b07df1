package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mirror/internal/analysis"
	"mirror/internal/engine"
	"mirror/internal/logger"
	"mirror/internal/model"
	"mirror/internal/registry"
)

// StatusSource is the engine surface the API reads from.
type StatusSource interface {
	Status() (engine.State, *model.CycleResult)
	Portfolio() model.PortfolioSummary
	LastAnalysis() analysis.Report
}

// CycleReader backs /api/cycles; nil disables the endpoint.
type CycleReader interface {
	RecentCycles(ctx context.Context, limit int) ([]model.CycleResult, error)
}

// ServerConfig describes the HTTP API dependencies.
type ServerConfig struct {
	Addr   string
	Engine StatusSource
	Cycles CycleReader
	Tasks  *registry.Registry
}

// Server is the read-only operational API of the mirror daemon.
type Server struct {
	addr   string
	router *gin.Engine
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("http server requires an engine")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9991"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/status", func(c *gin.Context) {
		state, last := cfg.Engine.Status()
		payload := gin.H{"state": state, "last_cycle": last}
		if cfg.Tasks != nil {
			payload["tasks"] = cfg.Tasks.Statuses()
		}
		c.JSON(http.StatusOK, payload)
	})
	api.GET("/portfolio", func(c *gin.Context) {
		c.JSON(http.StatusOK, cfg.Engine.Portfolio())
	})
	api.GET("/analysis", func(c *gin.Context) {
		c.JSON(http.StatusOK, cfg.Engine.LastAnalysis())
	})
	if cfg.Cycles != nil {
		api.GET("/cycles", func(c *gin.Context) {
			limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
			cycles, err := cfg.Cycles.RecentCycles(c.Request.Context(), limit)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, cycles)
		})
	}

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Handler exposes the routed handler, mainly for in-process serving in tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("http: listening addr=%s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("http: %s %s status=%d duration=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Truncate(time.Millisecond))
	}
}
