package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mahirTaj/BashaLagbe-sub000/api"
	"github.com/mahirTaj/BashaLagbe-sub000/config"
	"go.uber.org/zap"
)

// Run builds the HTTP router, starts the server and blocks until the
// context is cancelled or the server fails.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, resolver api.IdentityResolver, slotHandler *api.SlotHandler, bookingHandler *api.BookingHandler) error {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := engine.Group("/")
	private := engine.Group("/", api.RequireIdentity(resolver))

	slotHandler.Register(public, private)
	bookingHandler.Register(private)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	log.Info("http server started", zap.String("address", cfg.HTTP.Address))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
