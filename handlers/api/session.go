package api

import (
	"strings"

	"klar/auth"
	"klar/utils"
	"klar/workspace"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

const (
	localsWorkspace = "workspace"

	// SessionEmailKey holds the logged-in account in the web session
	SessionEmailKey = "email"
)

// SessionAuth resolves the workspace of a request from its bearer token or
// its session cookie
type SessionAuth struct {
	store      *session.Store
	workspaces *workspace.Manager
	secret     string
}

// NewSessionAuth creates the resolver
func NewSessionAuth(store *session.Store, workspaces *workspace.Manager, secret string) *SessionAuth {
	return &SessionAuth{store: store, workspaces: workspaces, secret: secret}
}

// SessionMiddleware rejects anonymous requests. API and HTMX callers get a
// 401, browsers are sent to the login page.
func (a *SessionAuth) SessionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ws, err := a.Resolve(c)
		if err != nil {
			if IsAPIRequest(c) {
				return err
			}
			return c.Redirect("/login")
		}

		c.Locals(localsWorkspace, ws)
		return c.Next()
	}
}

// Resolve returns the workspace of the caller. Token callers are keyed by
// the token id, browsers by their session id.
func (a *SessionAuth) Resolve(c *fiber.Ctx) (*workspace.Workspace, error) {
	if token := auth.ExtractBearer(c.Get(fiber.HeaderAuthorization)); token != "" {
		claims, err := auth.ParseToken(token, a.secret)
		if err != nil {
			return nil, utils.UnauthorizedError("Invalid token", err)
		}
		return a.workspaces.Open(claims.ID, claims.Email), nil
	}

	sess, err := a.store.Get(c)
	if err != nil {
		return nil, utils.InternalServerError("Session error", err)
	}
	email, _ := sess.Get(SessionEmailKey).(string)
	if email == "" {
		return nil, utils.UnauthorizedError("Not logged in", nil)
	}
	return a.workspaces.Open(sess.ID(), email), nil
}

// CurrentWorkspace returns the workspace set by SessionMiddleware
func CurrentWorkspace(c *fiber.Ctx) *workspace.Workspace {
	ws, _ := c.Locals(localsWorkspace).(*workspace.Workspace)
	return ws
}

// Localizer returns the request localizer set by the locale middleware
func Localizer(c *fiber.Ctx) *i18n.Localizer {
	if l, ok := c.Locals("localizer").(*i18n.Localizer); ok {
		return l
	}
	return utils.GetLocalizer(utils.DefaultLang)
}

// IsAPIRequest reports whether the caller expects JSON
func IsAPIRequest(c *fiber.Ctx) bool {
	if c == nil {
		return false
	}
	if c.Get("HX-Request") != "" {
		return true
	}
	return strings.HasPrefix(c.Path(), "/api") || strings.HasPrefix(c.Path(), "/ws")
}
