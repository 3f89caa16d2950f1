package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/venuehub/reservations/api"
	"github.com/venuehub/reservations/config"
	"github.com/venuehub/reservations/internal/service/availability"
	"github.com/venuehub/reservations/internal/service/reservation"
)

const swaggerSpecFile = "reservations.swagger.json"

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type Services struct {
	Availability availability.AvailabilityUseCase
	Reservations reservation.ReservationUseCase
	Health       map[string]HealthCheck
}

// Run starts the HTTP server and blocks until ctx is canceled or the server
// fails.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, svc Services) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(cfg, log, svc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("address", cfg.HTTP.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(cfg *config.Config, log *zap.Logger, svc Services) *gin.Engine {
	if !cfg.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		api.RequestID(),
		api.AccessLog(log.With(zap.String("component", "http"))),
		api.Recovery(log),
		api.Timeout(time.Duration(cfg.HTTP.RequestTimeout)*time.Second),
	)

	router.GET("/healthz", healthz(svc.Health))

	v1 := router.Group("/api/v1")
	api.NewResourceHandler(svc.Availability, svc.Reservations).Register(v1.Group("/resources"))
	api.NewReservationHandler(svc.Reservations).Register(v1.Group("/reservations"))

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/"+swaggerSpecFile),
		)))
	}
	return router
}

func healthz(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		report := gin.H{}
		for name, check := range checks {
			if err := check(c.Request.Context()); err != nil {
				status = http.StatusServiceUnavailable
				report[name] = err.Error()
				continue
			}
			report[name] = "ok"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": report})
	}
}
