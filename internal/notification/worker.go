package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/25-26J-299/smartrose-admin/internal/store"
)

// Notice is a message pushed to every subscribed admin browser.
type Notice struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans notices out to the stored push subscriptions.
type WorkerPool struct {
	size    int
	jobs    chan Notice
	subs    store.SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender

	stopped  chan struct{}
	stopOnce sync.Once
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, subs store.SubscriptionStore, webpushOptions *webpush.Options) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Notice, size),
		subs:    subs,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		stopped: make(chan struct{}),
	}
}

// Start launches the worker goroutines. They stop when ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
	go func() {
		<-ctx.Done()
		wp.stopOnce.Do(func() { close(wp.stopped) })
	}()
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case notice := <-wp.jobs:
			wp.broadcast(ctx, notice)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a notice. It blocks while the queue is full, and drops the
// notice once the pool has stopped.
func (wp *WorkerPool) Dispatch(notice Notice) {
	select {
	case wp.jobs <- notice:
	case <-wp.stopped:
		log.Printf("Notification pool stopped; dropping notice %q", notice.Title)
	}
}

func (wp *WorkerPool) broadcast(ctx context.Context, notice Notice) {
	subscriptions, err := wp.subs.ListSubscriptions(ctx)
	if err != nil {
		log.Printf("Error fetching push subscriptions: %v", err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(notice)
	if err != nil {
		log.Printf("Error encoding notice %q: %v", notice.Title, err)
		return
	}

	log.Printf("Sending %q to %d subscriptions", notice.Title, len(subscriptions))
	for _, sub := range subscriptions {
		wp.send(ctx, sub.Endpoint, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys:     webpush.Keys{P256dh: sub.P256DH, Auth: sub.Auth},
		}, payload)
	}
}

func (wp *WorkerPool) send(ctx context.Context, endpoint string, sub *webpush.Subscription, payload []byte) {
	resp, err := wp.sender.Send(payload, sub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", endpoint)
		if err := wp.subs.DeleteSubscription(ctx, endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", endpoint, err)
		}
	}
}
