// Package httpserver assembles the Fiber application: middleware, views,
// handlers and routes.
package httpserver

import (
	"time"

	"klar/auth"
	"klar/config"
	"klar/handlers/api"
	"klar/handlers/web"
	"klar/metrics"
	"klar/middleware"
	"klar/storage"
	"klar/utils"
	"klar/views"
	"klar/workspace"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the assembled application and the state it owns
type Server struct {
	App        *fiber.App
	Sessions   *session.Store
	Workspaces *workspace.Manager
	Hub        *api.NotificationHub
	Limiter    *middleware.RateLimiter
}

// Options tweak the assembly, mostly for tests
type Options struct {
	// DisableRequestLog turns off the per-request access log
	DisableRequestLog bool
}

// New builds the application over kv and the credential directory
func New(cfg *config.Config, kv storage.KV, directory *auth.Directory, log *utils.Logger, opts ...Options) *Server {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	if log == nil {
		log = utils.Log
	}

	sessions := session.New(session.Config{
		Storage:        storage.NewSessionStorage(kv),
		Expiration:     cfg.Session.Expiration.Duration,
		KeyLookup:      "cookie:klar_session",
		CookieSecure:   cfg.Session.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})

	settingsStorage := storage.NewSettingsStorage(kv, cfg.Storage.SettingsPrefix, log)
	workspaces := workspace.NewManager(settingsStorage, directory, cfg.Session.Expiration.Duration, log)
	hub := api.NewNotificationHub(log)

	app := fiber.New(fiber.Config{
		AppName:      "KLAR",
		Views:        views.New(),
		ViewsLayout:  "layouts/main",
		ErrorHandler: errorHandler(log),
	})

	app.Use(recover.New())
	if !opt.DisableRequestLog {
		app.Use(logger.New())
	}
	app.Use(middleware.Metrics())
	app.Use(compress.New())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline';",
	}))
	app.Use(middleware.LocaleMiddleware())
	limiter := middleware.NewRateLimiter(cfg.Security.RateLimit, cfg.Security.RateWindow.Duration)
	app.Use(limiter.Handler())
	if cfg.Security.CSRF {
		csrf := middleware.DefaultCSRFConfig()
		csrf.CookieSecure = cfg.Session.CookieSecure
		csrf.Skipper = func(c *fiber.Ctx) bool {
			// the token endpoint answers in the body, never through cookies
			return middleware.SkipBearer(c) || c.Path() == "/api/login"
		}
		app.Use(middleware.CSRFProtection(csrf))
	}

	// Handlers
	sessionAuth := api.NewSessionAuth(sessions, workspaces, cfg.JWT.Secret)
	emailAPI := api.NewEmailHandler(hub)
	settingsAPI := api.NewSettingsHandler(hub)
	authAPI := api.NewAuthHandler(directory, cfg.JWT.Secret, cfg.JWT.TTL.Duration)
	i18nAPI := &api.I18nHandler{}

	pages := web.NewPageHandler(sessions)
	authWeb := web.NewAuthHandler(sessions, directory, workspaces)
	mailboxWeb := web.NewMailboxHandler(sessions, emailAPI, settingsAPI)
	settingsWeb := web.NewSettingsHandler(sessions, settingsAPI)

	// Public routes
	app.Get("/", pages.ShowHome)
	app.Get("/page/:name", pages.ShowPage)
	app.Get("/login", authWeb.ShowLogin)
	app.Post("/login", authWeb.HandleLogin)
	app.Get("/logout", authWeb.HandleLogout)
	app.Get("/signup", authWeb.ShowSignup)
	app.Post("/signup", authWeb.HandleSignup)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metrics.SetActiveWorkspaces(workspaces.Len())
		return c.Next()
	}, adaptor.HTTPHandler(promhttp.Handler()))

	app.Post("/api/login", authAPI.Login)
	app.Get("/api/i18n/:lang", i18nAPI.GetTranslations)

	// Protected web routes
	protected := app.Group("", sessionAuth.SessionMiddleware())
	protected.Get("/mailbox", mailboxWeb.ShowMailbox)
	protected.Post("/mailbox/zen", mailboxWeb.HandleZen)
	protected.Post("/mailbox/features/:feature", mailboxWeb.HandleFeature)
	protected.Post("/mailbox/:id/:action", mailboxWeb.HandleAction)
	protected.Get("/settings", settingsWeb.ShowSettings)
	protected.Post("/settings/account", settingsWeb.UpdateAccount)
	protected.Post("/settings/features", settingsWeb.UpdateFeatures)
	protected.Post("/settings/notifications", settingsWeb.UpdateNotifications)

	// API routes
	apiRoutes := app.Group("/api", sessionAuth.SessionMiddleware())
	{
		apiRoutes.Get("/emails", emailAPI.ListEmails)
		apiRoutes.Get("/emails/:id", emailAPI.GetEmail)
		for _, action := range []string{api.ActionStar, api.ActionRead, api.ActionArchive, api.ActionTrash, api.ActionRestore} {
			apiRoutes.Post("/emails/:id/"+action, emailAPI.Action(action))
		}
		apiRoutes.Delete("/emails/:id", emailAPI.Action(api.ActionDelete))

		apiRoutes.Get("/settings", settingsAPI.GetSettings)
		apiRoutes.Patch("/settings", settingsAPI.UpdateSettings)

		apiRoutes.Get("/events", hub.HandleSSE)
	}

	// WebSocket notifications
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, sessionAuth.SessionMiddleware())
	app.Get("/ws/events", websocket.New(hub.HandleWebSocket))

	// 404 Handler for undefined routes
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundError(utils.T(api.Localizer(c), "error_404"), nil)
	})

	log.Info("Routes registered (storage driver: %s)", cfg.Storage.Driver)

	return &Server{
		App:        app,
		Sessions:   sessions,
		Workspaces: workspaces,
		Hub:        hub,
		Limiter:    limiter,
	}
}

// Shutdown stops the server and its background loops
func (s *Server) Shutdown() error {
	s.Workspaces.Shutdown()
	s.Limiter.Close()
	s.Hub.Close()
	return s.App.Shutdown()
}

// errorHandler renders AppErrors: JSON for API callers, the error page for
// browsers
func errorHandler(log *utils.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := utils.StatusCode(err)
		message := err.Error()
		if appErr, ok := err.(*utils.AppError); ok {
			message = appErr.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("Request %s %s failed: %v", c.Method(), c.Path(), err)
			message = utils.T(api.Localizer(c), "error_500")
		} else {
			log.Debug("Request %s %s: %v", c.Method(), c.Path(), err)
		}

		if api.IsAPIRequest(c) {
			return c.Status(code).JSON(fiber.Map{
				"error": message,
			})
		}

		if renderErr := c.Status(code).Render("error", fiber.Map{
			"L":     api.Localizer(c),
			"Lang":  c.Locals("lang"),
			"Error": message,
			"Code":  code,
		}); renderErr != nil {
			log.Error("Failed to render error page: %v", renderErr)
			return c.Status(code).SendString(message)
		}
		return nil
	}
}
