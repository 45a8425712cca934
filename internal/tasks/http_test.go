package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTask() Task {
	return Task{
		Name:   "prayer-fajr-athan-3-abc123-1766000000",
		FireAt: 1766000000,
		Target: Target{
			URL:     "http://localhost:8080/api/notify/dispatch",
			Method:  http.MethodPost,
			Headers: map[string]string{"Content-Type": "application/json"},
			Body:    []byte(`{"push_token":"tok"}`),
		},
	}
}

func TestCreateTask_Created(t *testing.T) {
	var got Task
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tasks", r.URL.Path)

		err := json.NewDecoder(r.Body).Decode(&got)
		require.NoError(t, err)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second)
	err := client.CreateTask(context.Background(), testTask())
	require.NoError(t, err)

	assert.Equal(t, "prayer-fajr-athan-3-abc123-1766000000", got.Name)
	assert.Equal(t, int64(1766000000), got.FireAt)
	assert.Equal(t, http.MethodPost, got.Target.Method)
	assert.Equal(t, []byte(`{"push_token":"tok"}`), got.Target.Body)
}

func TestCreateTask_ConflictIsErrTaskExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second)
	err := client.CreateTask(context.Background(), testTask())
	assert.ErrorIs(t, err, ErrTaskExists)
}

func TestCreateTask_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second)
	err := client.CreateTask(context.Background(), testTask())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTaskExists)
}

func TestCreateTask_Unreachable(t *testing.T) {
	// a closed server makes the transport fail outright
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	err := client.CreateTask(context.Background(), testTask())
	assert.Error(t, err)
}
