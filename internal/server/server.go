package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"capgrid/config"
	"capgrid/internal/handler"
	"capgrid/internal/router"
	"capgrid/internal/service"
	"capgrid/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// NewEngine builds the gin engine with request logging and all API routes.
func NewEngine(svc *service.Service) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	router.SetupRouter(engine, handler.NewHandler(svc))
	return engine
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.GetLogger().Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// StartBackend serves the API on the configured address until ctx is done.
func StartBackend(ctx context.Context, svc *service.Service) error {
	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: NewEngine(svc),
	}

	errCh := make(chan error, 1)
	go func() {
		log.GetLogger().Info("backend listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.GetLogger().Info("backend shutting down")
	return srv.Shutdown(shutdownCtx)
}
