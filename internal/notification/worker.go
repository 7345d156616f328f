package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"schichtbuch-backend/internal/logger"
	"schichtbuch-backend/internal/model"
	"schichtbuch-backend/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Job is one push delivery: the mentioned user and the message payload.
type Job struct {
	UserID  int64
	Payload []byte
}

// mentionPayload is the JSON body delivered to the browser.
type mentionPayload struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	EntryID int64  `json:"entry_id"`
}

// WorkerPool manages a pool of workers delivering mention notifications as
// web pushes to the mentioned users' registered browsers.
type WorkerPool struct {
	size    int
	jobs    chan Job
	store   store.Store
	webpush *webpush.Options
	sender  Sender
	log     *logger.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options, log *logger.Logger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     log.With("component", "push_worker"),
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Debug("worker started", "worker", id)
	for {
		select {
		case job := <-wp.jobs:
			wp.deliver(ctx, job)
		case <-ctx.Done():
			wp.log.Debug("worker shutting down", "worker", id)
			return
		}
	}
}

// DispatchMentions queues one push job per created mention notification.
// Queueing never blocks the request; when the pool is saturated the push is
// dropped (the in-app notification row already exists).
func (wp *WorkerPool) DispatchMentions(actor *model.User, notifications []model.MentionNotification) {
	for _, n := range notifications {
		by := actor.DisplayName
		if by == "" {
			by = actor.Username
		}
		payload, err := json.Marshal(mentionPayload{
			Title:   "Schichtbuch",
			Body:    fmt.Sprintf("%s hat dich in einem Eintrag erwähnt", by),
			EntryID: n.EntryID,
		})
		if err != nil {
			continue
		}
		select {
		case wp.jobs <- Job{UserID: n.UserID, Payload: payload}:
		default:
			wp.log.Warn("push queue full, dropping job", "user_id", n.UserID)
		}
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

func (wp *WorkerPool) deliver(ctx context.Context, job Job) {
	subs, err := wp.store.SubscriptionsForUser(ctx, job.UserID)
	if err != nil {
		wp.log.Error("failed to fetch subscriptions", "user_id", job.UserID, "error", err)
		return
	}
	for _, sub := range subs {
		wp.push(ctx, sub, job.Payload)
	}
}

func (wp *WorkerPool) push(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Error("failed to send push", "endpoint", sub.Endpoint, "error", err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		wp.log.Info("subscription expired, deleting", "endpoint", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.UserID, sub.Endpoint); err != nil {
			wp.log.Error("failed to delete expired subscription", "endpoint", sub.Endpoint, "error", err)
		}
	}
}
