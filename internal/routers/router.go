// Package routers assembles the gin engine.
package routers

import (
	"time"

	"github.com/driftnotes/drift-sync-service/internal/app"
	"github.com/driftnotes/drift-sync-service/internal/middleware"
	"github.com/driftnotes/drift-sync-service/internal/routers/api_router"
	"github.com/driftnotes/drift-sync-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// The mention scan is linear in total note content, so its endpoint gets a
// dedicated bucket.
var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/api/links/mentions",
		FillInterval: time.Second,
		Capacity:     10,
		Quantum:      10,
	},
)

func NewRouter(container *app.App) *gin.Engine {
	cfg := container.Config()
	log := container.Logger()

	if cfg.Server.RunMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RecoveryWithLogger(log))

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(container.MetricsRegistry(), promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.Use(middleware.AccessLog(log))
		api.Use(middleware.RateLimiter(methodLimiters))

		noteHandler := api_router.NewNoteHandler(container.NoteService(), log)
		linkHandler := api_router.NewLinkHandler(container.LinkService(), log)
		syncHandler := api_router.NewSyncHandler(container.StatusService(), log)

		notes := api.Group("/notes")
		{
			notes.GET("", noteHandler.List)
			notes.POST("", noteHandler.Create)
			notes.GET("/:id", noteHandler.Get)
			notes.PUT("/:id", noteHandler.Update)
			notes.PATCH("/:id/rename", noteHandler.Rename)
			notes.POST("/:id/trash", noteHandler.Trash)
			notes.DELETE("/:id", noteHandler.Delete)

			notes.GET("/:id/backlinks", linkHandler.Backlinks)
			notes.GET("/:id/links", linkHandler.Outgoing)
		}

		api.GET("/links/mentions", linkHandler.Mentions)

		sync := api.Group("/sync")
		{
			sync.GET("/status", syncHandler.Status)
			sync.POST("/resync", syncHandler.Resync)
		}
	}

	return r
}
