// Package watcher polls the backend for users awaiting approval and raises a
// push notice when new ones appear.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/25-26J-299/smartrose-admin/config"
	"github.com/25-26J-299/smartrose-admin/internal/adminapi"
	"github.com/25-26J-299/smartrose-admin/internal/notification"
	"github.com/25-26J-299/smartrose-admin/internal/view"
)

// PendingUsers lists users by approval status.
type PendingUsers interface {
	FetchUsers(ctx context.Context, status string) ([]adminapi.User, error)
}

// Session reports whether the operator is signed in.
type Session interface {
	Authenticated() bool
}

// Dispatcher delivers notices.
type Dispatcher interface {
	Dispatch(notice notification.Notice)
}

// Service remembers which pending users have already been announced.
type Service struct {
	cfg        *config.WatcherConfig
	users      PendingUsers
	session    Session
	dispatcher Dispatcher

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewService creates a watcher.
func NewService(cfg *config.WatcherConfig, users PendingUsers, session Session, dispatcher Dispatcher) *Service {
	return &Service{
		cfg:        cfg,
		users:      users,
		session:    session,
		dispatcher: dispatcher,
		seen:       make(map[string]struct{}),
	}
}

// Run polls until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Pending-approval watcher is disabled. Not starting.")
		return
	}
	log.Println("Starting pending-approval watcher...")

	s.PollOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Pending-approval watcher shutting down.")
			return
		case <-timer.C:
			s.PollOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// PollOnce fetches pending users and announces the ones not seen in the
// previous poll. It returns the ids that were announced.
func (s *Service) PollOnce(ctx context.Context) []string {
	if !s.session.Authenticated() {
		return nil
	}

	users, err := s.users.FetchUsers(ctx, view.StatusPending)
	if err != nil {
		if errors.Is(err, adminapi.ErrUnauthenticated) {
			log.Println("Pending-approval watcher paused: session expired.")
		} else {
			log.Printf("Error fetching pending users: %v", err)
		}
		return nil
	}

	s.mu.Lock()
	current := make(map[string]struct{}, len(users))
	var fresh []adminapi.User
	for _, u := range users {
		current[u.ID] = struct{}{}
		if _, ok := s.seen[u.ID]; !ok {
			fresh = append(fresh, u)
		}
	}
	s.seen = current
	s.mu.Unlock()

	if len(fresh) == 0 {
		return nil
	}

	sort.Slice(fresh, func(i, j int) bool { return fresh[i].ID < fresh[j].ID })
	ids := make([]string, 0, len(fresh))
	names := make([]string, 0, len(fresh))
	for _, u := range fresh {
		ids = append(ids, u.ID)
		name := u.FullName
		if name == "" {
			name = u.Email
		}
		names = append(names, name)
	}

	log.Printf("Dispatching approval notice for %d new pending users", len(fresh))
	s.dispatcher.Dispatch(notification.Notice{
		Title: title(len(fresh)),
		Body:  strings.Join(names, ", "),
		URL:   "/console/users?status=pending",
		Tag:   "pending-users",
	})
	return ids
}

func title(n int) string {
	if n == 1 {
		return "1 new user awaiting approval"
	}
	return fmt.Sprintf("%d new users awaiting approval", n)
}
