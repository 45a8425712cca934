package endpoints

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minaret-io/minaret/internal/http/api"
	"github.com/minaret-io/minaret/internal/http/api/subscriber/packets"
	"github.com/minaret-io/minaret/internal/model"
)

// Resyncer is the targeted sweep a resync kicks off.
type Resyncer interface {
	SweepSubscriber(ctx context.Context, subscriberID int, pushToken string)
}

// NotificationsModule mounts the authenticated resync endpoint. A device
// calls it after (re)registering for push, handing over its fresh token;
// the sweep then schedules today's remaining alerts against that token.
func NotificationsModule(sweeper Resyncer) api.Module {
	ctl := &notificationManager{sweeper: sweeper}
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/notifications/resync", ctl.resync)
	})
}

type notificationManager struct {
	sweeper Resyncer
}

// POST /api/subscriber/notifications/resync
func (n *notificationManager) resync(ctx *gin.Context, subscriber *model.Subscriber) (any, *api.APIError) {
	var request packets.ResyncRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	// the sweep outlives the request, so it gets its own context
	go n.sweeper.SweepSubscriber(context.Background(), subscriber.ID, request.PushToken)

	return gin.H{"status": "sweeping"}, nil
}
