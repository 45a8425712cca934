package taskqueue

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type submitTarget struct {
	URL     string            `json:"url" binding:"required"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    []byte            `json:"body"`
}

type submitRequest struct {
	Name   string       `json:"name" binding:"required"`
	FireAt int64        `json:"fire_at" binding:"required"`
	Target submitTarget `json:"target" binding:"required"`
}

type taskResponse struct {
	Name      string  `json:"name"`
	State     string  `json:"state"`
	FireAt    int64   `json:"fire_at"`
	Attempts  int     `json:"attempts"`
	URL       string  `json:"url"`
	LastError *string `json:"last_error,omitempty"`
}

// NewServer builds the queue's HTTP API.
func NewServer(store Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/tasks", createTask(store))
	r.GET("/tasks/:name", getTask(store))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func createTask(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req submitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rec := Record{
			Name:    req.Name,
			URL:     req.Target.URL,
			Method:  req.Target.Method,
			Headers: req.Target.Headers,
			Body:    req.Target.Body,
			FireAt:  req.FireAt,
		}
		if err := store.Insert(c.Request.Context(), rec); err != nil {
			if errors.Is(err, ErrDuplicateName) {
				c.JSON(http.StatusConflict, gin.H{"error": "task name already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store task"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"name": req.Name, "state": "pending"})
	}
}

func getTask(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := store.Get(c.Request.Context(), c.Param("name"))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no such task"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read task"})
			return
		}
		c.JSON(http.StatusOK, taskResponse{
			Name:      rec.Name,
			State:     rec.State,
			FireAt:    rec.FireAt,
			Attempts:  rec.Attempts,
			URL:       rec.URL,
			LastError: rec.LastError,
		})
	}
}
