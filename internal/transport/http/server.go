package http

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"studydeck/internal/bootstrap"
	"studydeck/internal/transport/http/handler"
	"studydeck/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(
		middleware.RequestID(app.Logger),
		middleware.AccessLog(),
		middleware.Recovery(),
		middleware.CORS(app.Config.CORS.AllowOrigins),
	)

	healthHandler := handler.NewHealthHandler(app.Config.App.Name, app.Config.App.Env, app.StartedAt, healthChecks(app))
	router.GET("/", healthHandler.Live)
	router.GET("/health", healthHandler.Live)
	router.GET("/healthz", healthHandler.Check)

	sessionHandler := handler.NewSessionHandler(app.Sessions)
	ingestHandler := handler.NewIngestHandler(app.Ingest, app.Config.Ingest.MaxUploadBytes)
	flashcardHandler := handler.NewFlashcardHandler(app.Flashcards)

	// A nil *WindowCounter must not reach the interface as a non-nil value.
	var limiter middleware.WindowLimiter
	if app.Limiter != nil {
		limiter = app.Limiter
	}
	limited := middleware.RateLimit(limiter, app.Config.RateLimit.Requests, app.Config.RateLimitWindow())

	router.GET("/session-id", sessionHandler.CreateSession)
	router.GET("/flashcards", sessionHandler.ListFlashcards)
	router.GET("/files", sessionHandler.ListFiles)
	router.POST("/upload", limited, ingestHandler.Upload)
	router.GET("/llm", limited, flashcardHandler.Generate)

	return router
}

// healthChecks probes the database always, and Redis and RabbitMQ only when
// they are configured.
func healthChecks(app *bootstrap.App) map[string]handler.Check {
	checks := map[string]handler.Check{
		"database": app.Store.Ping,
	}
	if app.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		}
	}
	if app.MQConn != nil {
		checks["rabbitmq"] = func(context.Context) error {
			if app.MQConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}
	return checks
}
