package endpoints

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minaret-io/minaret/internal/http/api"
)

// Sweeper is the global sweep the manual trigger kicks off.
type Sweeper interface {
	SweepAll(ctx context.Context)
}

// SweepModule mounts the manual sweep trigger. It stays unauthenticated:
// the sweep is idempotent, so the worst a stranger can do is make us
// re-derive task names the queue already holds. The mount site puts a
// rate limit in front as a courtesy to the database.
func SweepModule(sweeper Sweeper) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.Group.POST("/sweep", func(ctx *gin.Context) {
			// the sweep outlives the request, so it gets its own context
			go sweeper.SweepAll(context.Background())
			ctx.JSON(http.StatusAccepted, gin.H{"status": "sweeping"})
		})
	})
}
