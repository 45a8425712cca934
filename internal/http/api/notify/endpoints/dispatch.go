package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/minaret-io/minaret/internal/http/api"
	"github.com/minaret-io/minaret/internal/http/api/notify/packets"
	"github.com/minaret-io/minaret/internal/push"
)

// DispatchModule mounts the endpoint queue tasks fire into. It is
// stateless on purpose: everything needed to send arrived in the task
// body when the alert was scheduled, so dispatch works even if the
// subscriber row changed or vanished since.
func DispatchModule(sender push.Sender) api.Module {
	ctl := &dispatcher{sender: sender}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/dispatch", ctl.dispatch)
	})
}

type dispatcher struct {
	sender push.Sender
}

// POST /api/notify/dispatch
func (d *dispatcher) dispatch(ctx *gin.Context) (any, *api.APIError) {
	var request packets.DispatchRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	msg := push.Message{
		To:    request.PushToken,
		Title: request.Title,
		Body:  request.Body,
		Data:  request.Data,
	}
	if err := d.sender.Send(ctx.Request.Context(), msg); err != nil {
		log.Error().Err(err).
			Str("prayer", request.Data["prayer"]).
			Str("alert", request.Data["alert"]).
			Msg("failed to send push")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not send push"}
	}

	return gin.H{"status": "sent"}, nil
}
