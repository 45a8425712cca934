package taskqueue

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversDueTask(t *testing.T) {
	var gotBody []byte
	var gotHeader string
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	store := NewSQLiteStore(newTestDB(t))
	ctx := context.Background()

	rec := testRecord("task-a", time.Now().Add(-time.Second).Unix())
	rec.URL = target.URL
	require.NoError(t, store.Insert(ctx, rec))

	d := NewDispatcher(store, time.Second)
	d.runOnce(ctx)

	assert.Equal(t, "application/json", gotHeader)
	assert.Equal(t, []byte(`{"push_token":"tok"}`), gotBody)

	got, err := store.Get(ctx, "task-a")
	require.NoError(t, err)
	assert.Equal(t, "delivered", got.State)
}

func TestDispatcher_LeavesFutureTasksAlone(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("future task should not fire")
	}))
	defer target.Close()

	store := NewSQLiteStore(newTestDB(t))
	ctx := context.Background()

	rec := testRecord("later", time.Now().Add(time.Hour).Unix())
	rec.URL = target.URL
	require.NoError(t, store.Insert(ctx, rec))

	d := NewDispatcher(store, time.Second)
	d.runOnce(ctx)

	got, err := store.Get(ctx, "later")
	require.NoError(t, err)
	assert.Equal(t, "pending", got.State)
}

func TestDispatcher_FailedDeliveryRequeuesWithBackoff(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer target.Close()

	store := NewSQLiteStore(newTestDB(t))
	ctx := context.Background()
	before := time.Now()

	rec := testRecord("task-a", before.Add(-time.Second).Unix())
	rec.URL = target.URL
	require.NoError(t, store.Insert(ctx, rec))

	d := NewDispatcher(store, time.Second)
	d.runOnce(ctx)

	got, err := store.Get(ctx, "task-a")
	require.NoError(t, err)
	assert.Equal(t, "pending", got.State)
	assert.Equal(t, 1, got.Attempts)
	assert.Greater(t, got.FireAt, before.Unix())
	require.NotNil(t, got.LastError)
	assert.Contains(t, *got.LastError, "500")
}
