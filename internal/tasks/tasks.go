// Package tasks defines the asynq task types shared by the server, worker and scheduler
package tasks

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeWebhookEvent     = "webhook:event"
	TypeTokenCleanup     = "maintenance:token_cleanup"
	TypeWebhookRetention = "maintenance:webhook_retention"
	TypeCheckoutCleanup  = "maintenance:checkout_cleanup"
)

// Queue names
const (
	QueueWebhooks    = "webhooks"
	QueueMaintenance = "maintenance"
)

// Enqueuer wraps an asynq client for enqueuing application tasks
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer creates a new enqueuer
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{
		client: client,
	}
}

// EnqueueWebhookEvent enqueues processing of a stored webhook event by its database ID
func (e *Enqueuer) EnqueueWebhookEvent(ctx context.Context, eventID int) error {
	task := asynq.NewTask(TypeWebhookEvent, []byte(strconv.Itoa(eventID)))

	_, err := e.client.EnqueueContext(ctx, task, asynq.Queue(QueueWebhooks), asynq.MaxRetry(5))
	if err != nil {
		return fmt.Errorf("failed to enqueue webhook event task: %w", err)
	}

	return nil
}

// EnqueueMaintenance enqueues a maintenance task with an empty payload
func (e *Enqueuer) EnqueueMaintenance(ctx context.Context, taskType string) error {
	task := asynq.NewTask(taskType, nil)

	_, err := e.client.EnqueueContext(ctx, task, asynq.Queue(QueueMaintenance))
	if err != nil {
		return fmt.Errorf("failed to enqueue %s task: %w", taskType, err)
	}

	return nil
}
