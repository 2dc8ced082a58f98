// Package web serves the planner's HTML pages and the save-task endpoint.
package web

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"time"

	"dayplanner/internal/auth"
	"dayplanner/internal/config"
	"dayplanner/internal/planner"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
)

const (
	userKey      = "user"
	csrfKey      = "csrf"
	csrfField    = "csrf_token"
	csrfCookie   = "csrftoken"
	loginWindow  = time.Minute
	healthBudget = 2 * time.Second
)

// Deps are the services the handlers call.
type Deps struct {
	Planner  *planner.Service
	Auth     *auth.Service
	Sessions *auth.Sessions
	// Health reports whether the store is reachable.
	Health func(ctx context.Context) error
}

// Server is the HTTP front end.
type Server struct {
	app     *fiber.App
	cfg     config.Config
	deps    Deps
	verbose bool
}

// New builds the fiber app with all routes and middleware installed.
func New(cfg config.Config, deps Deps) (*Server, error) {
	views, err := newViews()
	if err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, deps: deps, verbose: cfg.Verbose}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
		Views:                 views,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[web] ${time} ${status} - ${latency} ${method} ${path}\n",
	}))
	s.setupRoutes()
	return s, nil
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on the configured address until Shutdown.
func (s *Server) Listen() error {
	log.Printf("[web] listening on %s", s.cfg.Server.Addr)
	return s.app.Listen(s.cfg.Server.Addr)
}

// Shutdown waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("[web] shutting down HTTP server...")
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) setupRoutes() {
	static, _ := fs.Sub(staticFS, "static")
	s.app.Use("/static", filesystem.New(filesystem.Config{
		Root:   http.FS(static),
		MaxAge: 3600,
	}))

	s.app.Get("/healthz", s.health)

	if s.cfg.Server.CSRF {
		s.app.Use(csrf.New(csrf.Config{
			KeyLookup:      "form:" + csrfField,
			CookieName:     csrfCookie,
			CookieSameSite: "Lax",
			CookieSecure:   s.cfg.Session.SecureCookie,
			CookieHTTPOnly: true,
			Expiration:     s.cfg.Session.TTL,
			KeyGenerator:   utils.UUIDv4,
			ContextKey:     csrfKey,
		}))
	}
	s.app.Use(s.loadSession)

	s.app.Get("/", s.home)
	s.app.Get("/login/", s.loginPage)
	s.app.Post("/login/", s.loginLimiter(), s.login)
	s.app.All("/logout/", s.logout)
	s.app.Get("/register/", s.registerPage)
	s.app.Post("/register/", s.register)

	s.app.Get("/day/:year/:month/:day/", s.requireLogin, s.day)
	s.app.All("/save-task/", s.requireLogin, s.saveTask)
	s.app.Get("/profile/", s.requireLogin, s.profilePage)
	s.app.Post("/profile/", s.requireLogin, s.updateProfile)
	s.app.Post("/change-password/", s.requireLogin, s.changePassword)
}

// loginLimiter throttles login attempts per client IP. A zero limit turns
// it off.
func (s *Server) loginLimiter() fiber.Handler {
	if s.cfg.Server.LoginRateLimit <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        s.cfg.Server.LoginRateLimit,
		Expiration: loginWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			addFlash(c, flashError, "Too many login attempts. Please wait a minute and try again.")
			return c.Redirect("/login/", fiber.StatusSeeOther)
		},
	})
}

func (s *Server) health(c *fiber.Ctx) error {
	if s.deps.Health != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthBudget)
		defer cancel()
		if err := s.deps.Health(ctx); err != nil {
			log.Printf("[web] health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// errorHandler renders plain-text errors and logs server faults.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		log.Printf("[web] %s %s: %v", c.Method(), c.Path(), err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(message)
}

func (s *Server) debugf(format string, args ...any) {
	if s.verbose {
		log.Printf("[web] "+format, args...)
	}
}
