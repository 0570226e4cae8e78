package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/25-26J-299/smartrose-admin/internal/adminapi"
	"github.com/25-26J-299/smartrose-admin/internal/console"
	"github.com/25-26J-299/smartrose-admin/internal/session"
	"github.com/25-26J-299/smartrose-admin/internal/store"
)

const errInvalidRequest = "invalid request"

// Authenticator exchanges credentials for a session.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*adminapi.LoginResult, error)
}

// Dependencies are the collaborators of the console handlers.
type Dependencies struct {
	Auth          Authenticator
	Session       *session.Session
	Console       *console.Console
	Subscriptions store.SubscriptionStore
	WebPush       *webpush.Options
	Responses     *cache.Cache
	LoginRoute    string
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	auth       Authenticator
	session    *session.Session
	console    *console.Console
	subs       store.SubscriptionStore
	webpush    *webpush.Options
	responses  *cache.Cache
	loginRoute string
}

// NewHandler creates a new API handler.
func NewHandler(deps Dependencies) *Handler {
	loginRoute := deps.LoginRoute
	if loginRoute == "" {
		loginRoute = "/login"
	}
	responses := deps.Responses
	if responses == nil {
		responses = cache.New(time.Minute, 10*time.Minute)
	}
	return &Handler{
		auth:       deps.Auth,
		session:    deps.Session,
		console:    deps.Console,
		subs:       deps.Subscriptions,
		webpush:    deps.WebPush,
		responses:  responses,
		loginRoute: loginRoute,
	}
}

// Reset closes every modal, forgets loaded pages and drops cached responses.
// It runs whenever a session starts or ends.
func (h *Handler) Reset() {
	h.console.Reset()
	h.responses.Flush()
}

// requireSession answers 401 before anything else runs when no token is held.
func (h *Handler) requireSession(c *gin.Context) {
	if !h.session.Authenticated() {
		h.fail(c, adminapi.ErrUnauthenticated)
		c.Abort()
		return
	}
	c.Next()
}

// statusFor maps a console or backend error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, adminapi.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, adminapi.ErrForbidden):
		return http.StatusForbidden
	case adminapi.IsNotFound(err):
		return http.StatusNotFound
	case console.IsValidation(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// fail writes err as {"error": message}. An expired session also carries
// the route of the sign-in page.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusBadGateway {
		log.Printf("Backend error on %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	body := gin.H{"error": err.Error()}
	if status == http.StatusUnauthorized {
		body["redirect"] = h.loginRoute
	}
	c.JSON(status, body)
}

// render writes a page or modal snapshot. When the load failed the snapshot
// is sent with the error's status so the front end can offer a retry. A 401
// resets the console before the load returns, so a missing session is checked
// directly.
func (h *Handler) render(c *gin.Context, err error, snapshot any) {
	if err == nil && !h.session.Authenticated() {
		err = adminapi.ErrUnauthenticated
	}
	if err == nil {
		c.JSON(http.StatusOK, snapshot)
		return
	}
	if statusFor(err) == http.StatusUnauthorized {
		h.fail(c, err)
		return
	}
	c.JSON(statusFor(err), snapshot)
}
