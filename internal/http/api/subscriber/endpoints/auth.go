package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minaret-io/minaret/internal/db"
	"github.com/minaret-io/minaret/internal/http/api"
	"github.com/minaret-io/minaret/internal/http/api/subscriber/packets"
	"github.com/minaret-io/minaret/internal/http/middleware"
)

// AuthPublicModule mounts the public login endpoint (/auth/login).
// Accounts are created through the subscriber app's own backend flow;
// this service only issues sessions for triggering resyncs.
func AuthPublicModule(jwtSecret string, store db.Store) api.Module {
	ctl := newSessionManager(jwtSecret, store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/auth/login", ctl.subscriberLogin)
	})
}

type SessionManager struct {
	jwtSecret string
	store     db.Store
}

func newSessionManager(secret string, store db.Store) *SessionManager {
	return &SessionManager{jwtSecret: secret, store: store}
}

// POST /api/subscriber/auth/login
func (s *SessionManager) subscriberLogin(ctx *gin.Context) (any, *api.APIError) {
	var request packets.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	subscriber, err := s.store.GetSubscriberByEmail(request.Email)
	if err != nil || subscriber == nil || !middleware.CheckPassword(subscriber.HashedPassword, request.Password) {
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "invalid credentials"}
	}

	token, err := middleware.GenerateJWT(subscriber.ID, s.jwtSecret)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not generate token"}
	}

	return gin.H{"token": token}, nil
}
