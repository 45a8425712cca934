package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minaret-io/minaret/internal/http/middleware"
	"github.com/minaret-io/minaret/internal/model"
)

// APIError is what a handler returns instead of writing the response itself.
type APIError struct {
	Code    int
	Message string
}

type HandlerFuncWithAuth func(ctx *gin.Context, subscriber *model.Subscriber) (any, *APIError)
type HandlerFunc func(ctx *gin.Context) (any, *APIError)

func ResolveEndpointWithAuth(h HandlerFuncWithAuth) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		subscriber, ok := middleware.GetCurrentSubscriber(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, apiError := h(ctx, subscriber)
		if apiError != nil {
			ctx.JSON(apiError.Code, gin.H{"error": apiError.Message})
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiError := h(ctx)
		if apiError != nil {
			ctx.JSON(apiError.Code, gin.H{"error": apiError.Message})
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}
