package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/minaret-io/minaret/internal/db"
	"github.com/minaret-io/minaret/internal/http/api"
	notifyapi "github.com/minaret-io/minaret/internal/http/api/notify/endpoints"
	subscriberapi "github.com/minaret-io/minaret/internal/http/api/subscriber/endpoints"
	"github.com/minaret-io/minaret/internal/http/middleware"
	"github.com/minaret-io/minaret/internal/notify"
	"github.com/minaret-io/minaret/internal/push"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, env Environment, store db.Store, sweeper *notify.Sweeper, sender push.Sender) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/subscriber",
		Auth:   false,
	},
		subscriberapi.AuthPublicModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/subscriber",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     store,
	},
		subscriberapi.NotificationsModule(sweeper),
	)

	// what the queue fires into; carries its own payload, needs no session
	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/notify",
	},
		notifyapi.DispatchModule(sender),
	)

	// manual trigger stays open but throttled
	api.MountGroup(r, api.GroupConfig{
		Prefix:     "/api/notify",
		Middleware: []gin.HandlerFunc{middleware.RateLimit(10*time.Second, 3)},
	},
		notifyapi.SweepModule(sweeper),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
