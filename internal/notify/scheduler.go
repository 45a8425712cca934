package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/minaret-io/minaret/internal/tasks"
)

// Outcome reports what a schedule attempt did.
type Outcome int

const (
	// OutcomeScheduled means the queue accepted a new task.
	OutcomeScheduled Outcome = iota
	// OutcomeDuplicate means an identical task was accepted earlier.
	// Sweeps treat this as success; it is how re-runs stay quiet.
	OutcomeDuplicate
)

// TaskScheduler submits alerts to the named-task queue, targeting the
// dispatch endpoint. It knows nothing about mosques or timetables; callers
// hand it a derived name, a rendered payload and a fire instant.
type TaskScheduler struct {
	client      tasks.Client
	dispatchURL string
}

func NewTaskScheduler(client tasks.Client, dispatchURL string) *TaskScheduler {
	return &TaskScheduler{client: client, dispatchURL: dispatchURL}
}

// Schedule enqueues one task. A name collision in the queue comes back as
// OutcomeDuplicate with a nil error.
func (s *TaskScheduler) Schedule(ctx context.Context, name string, payload DispatchPayload, fireAt time.Time) (Outcome, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	task := tasks.Task{
		Name:   name,
		FireAt: fireAt.Unix(),
		Target: tasks.Target{
			URL:     s.dispatchURL,
			Method:  http.MethodPost,
			Headers: map[string]string{"Content-Type": "application/json"},
			Body:    body,
		},
	}

	if err := s.client.CreateTask(ctx, task); err != nil {
		if errors.Is(err, tasks.ErrTaskExists) {
			return OutcomeDuplicate, nil
		}
		return 0, err
	}
	return OutcomeScheduled, nil
}
