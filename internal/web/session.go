package web

import (
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"dayplanner/internal/auth"
	"dayplanner/internal/db/models"
	"dayplanner/internal/planner"

	"github.com/gofiber/fiber/v2"
)

const sessionCookie = "dayplanner_session"

// loadSession resolves the session cookie, if any, and stores the user in
// Locals. A stale cookie is cleared and the request continues anonymous.
func (s *Server) loadSession(c *fiber.Ctx) error {
	token := c.Cookies(sessionCookie)
	if token == "" {
		return c.Next()
	}

	user, err := s.deps.Sessions.Resolve(c.UserContext(), token)
	switch {
	case err == nil:
		c.Locals(userKey, user)
	case errors.Is(err, auth.ErrInvalidSession):
		s.debugf("dropping invalid session cookie from %s", c.IP())
		s.clearSession(c)
	default:
		log.Printf("[web] error resolving session: %v", err)
		return err
	}
	return c.Next()
}

// requireLogin sends anonymous visitors to the login page, remembering
// where they were going.
func (s *Server) requireLogin(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Next()
	}
	return c.Redirect("/login/?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

func identity(c *fiber.Ctx) *planner.Identity {
	user := currentUser(c)
	if user == nil {
		return nil
	}
	return planner.IdentityOf(user)
}

func (s *Server) startSession(c *fiber.Ctx, user *models.User) error {
	token, err := s.deps.Sessions.Issue(user)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.deps.Sessions.TTL()),
		Secure:   s.cfg.Session.SecureCookie,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

func (s *Server) clearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   s.cfg.Session.SecureCookie,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	// Browsers drop tab, CR and LF from URLs, so "/\t/host" would become
	// "//host".
	if strings.ContainsFunc(next, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
