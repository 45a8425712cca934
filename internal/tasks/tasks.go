// Package tasks is the client side of the named-task queue. A task is an
// HTTP request the queue delivers once at a chosen instant; the name is the
// at-most-once guarantee, enforced by the queue, not by callers.
package tasks

import (
	"context"
	"errors"
)

// ErrTaskExists reports that the queue already holds a task with this name.
// For schedulers this is a success condition, not a failure.
var ErrTaskExists = errors.New("tasks: task name already exists")

// Target is the HTTP request a task fires at its instant.
type Target struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body,omitempty"`
}

// Task is one named, scheduled delivery. FireAt is a Unix timestamp in
// whole seconds; the queue compares instants, never wall-clock strings.
type Task struct {
	Name   string `json:"name"`
	FireAt int64  `json:"fire_at"`
	Target Target `json:"target"`
}

type Client interface {
	CreateTask(ctx context.Context, task Task) error
}
