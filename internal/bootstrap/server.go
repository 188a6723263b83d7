package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/zvrva/eventy/api"
	"github.com/zvrva/eventy/config"
	"github.com/zvrva/eventy/internal/service/auth"
	"github.com/zvrva/eventy/internal/service/events"
	"github.com/zvrva/eventy/internal/service/tickets"
)

// Run assembles the HTTP server and blocks until the context is canceled
// or the server fails.
func Run(ctx context.Context, cfg *config.Config, eventSvc events.EventUseCase, ticketSvc tickets.TicketUseCase, authSvc auth.AuthUseCase) error {
	router := newRouter(cfg, eventSvc, ticketSvc, authSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

func newRouter(cfg *config.Config, eventSvc events.EventUseCase, ticketSvc tickets.TicketUseCase, authSvc auth.AuthUseCase) *gin.Engine {
	router := gin.Default()
	secret := cfg.Auth.JWTSecret

	authHandler := api.NewAuthHandler(authSvc)
	eventHandler := api.NewEventHandler(eventSvc)
	ticketHandler := api.NewTicketHandler(ticketSvc)

	authHandler.Register(router.Group("/api/auth"))

	eventsGroup := router.Group("/api/events")
	eventHandler.Register(eventsGroup)
	adminEvents := router.Group("/api/events", api.AuthRequired(secret), api.AdminOnly())
	eventHandler.RegisterAdmin(adminEvents)

	// Guests can book and check in, so auth is attached when present but
	// never required here.
	ticketsGroup := router.Group("/api/tickets", api.AuthOptional(secret))
	ticketHandler.Register(ticketsGroup)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		docs := httpSwagger.Handler(httpSwagger.URL("/swagger/openapi.json"))
		router.GET("/docs/*any", gin.WrapH(http.StripPrefix("/docs", docs)))
	}

	return router
}
