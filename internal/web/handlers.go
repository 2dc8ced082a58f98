package web

import (
	"errors"
	"log"
	"net/url"
	"unicode"
	"unicode/utf8"

	"dayplanner/internal/auth"
	"dayplanner/internal/db"
	"dayplanner/internal/db/models"
	"dayplanner/internal/planner"

	"github.com/gofiber/fiber/v2"
)

// page is the data every template receives.
type page struct {
	Title     string
	User      *models.User
	Flashes   []flash
	CSRFField string
	CSRFToken string
	Next      string

	Month *planner.MonthView
	Day   *planner.DayView
}

// saveResult is the JSON body of /save-task/.
type saveResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) render(c *fiber.Ctx, name, title string, p page) error {
	p.Title = title
	p.User = currentUser(c)
	p.Flashes = popFlashes(c)
	p.CSRFField = csrfField
	p.CSRFToken, _ = c.Locals(csrfKey).(string)
	return c.Render(name, p)
}

func (s *Server) home(c *fiber.Ctx) error {
	month, err := s.deps.Planner.RenderMonth(identity(c), c.QueryInt("year", 0), c.QueryInt("month", 0))
	if errors.Is(err, planner.ErrInvalidDate) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid month")
	}
	if err != nil {
		return err
	}
	return s.render(c, "home", "Home", page{Month: month})
}

func (s *Server) loginPage(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect("/", fiber.StatusFound)
	}
	return s.render(c, "login", "Login", page{Next: c.Query("next")})
}

func (s *Server) login(c *fiber.Ctx) error {
	next := c.FormValue("next")
	user, err := s.deps.Auth.Authenticate(c.UserContext(), c.FormValue("username"), c.FormValue("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		addFlash(c, flashError, "Invalid username or password.")
		return c.Redirect(loginURL(next), fiber.StatusSeeOther)
	}
	if err != nil {
		return err
	}

	if err := s.startSession(c, user); err != nil {
		return err
	}
	log.Printf("[web] user %s logged in", user.Username)
	addFlash(c, flashSuccess, "You have been logged in successfully!")
	return c.Redirect(safeNext(next), fiber.StatusSeeOther)
}

func (s *Server) logout(c *fiber.Ctx) error {
	s.clearSession(c)
	addFlash(c, flashSuccess, "You have been logged out successfully!")
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) registerPage(c *fiber.Ctx) error {
	return s.render(c, "register", "Register", page{})
}

func (s *Server) register(c *fiber.Ctx) error {
	var in auth.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form")
	}

	user, err := s.deps.Auth.CreateAccount(c.UserContext(), in)
	if err != nil {
		msg, ok := accountMessage(err)
		if !ok {
			return err
		}
		addFlash(c, flashError, msg)
		return c.Redirect("/register/", fiber.StatusSeeOther)
	}

	log.Printf("[web] registered user %s", user.Username)
	addFlash(c, flashSuccess, "Account created successfully! You can now log in.")
	return c.Redirect("/login/", fiber.StatusSeeOther)
}

func (s *Server) day(c *fiber.Ctx) error {
	year, errY := c.ParamsInt("year")
	month, errM := c.ParamsInt("month")
	day, errD := c.ParamsInt("day")
	if errY != nil || errM != nil || errD != nil {
		return fiber.ErrNotFound
	}

	view, err := s.deps.Planner.RenderDay(c.UserContext(), identity(c), year, month, day)
	if errors.Is(err, planner.ErrInvalidDate) {
		return fiber.ErrNotFound
	}
	if err != nil {
		return err
	}
	return s.render(c, "day", view.DateLabel, page{Day: view})
}

// saveTask answers with a JSON status in every case, including wrong
// methods and failed saves.
func (s *Server) saveTask(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.JSON(saveResult{Status: "error", Message: "Invalid request"})
	}

	task, err := s.deps.Planner.SaveTask(c.UserContext(), identity(c), c.FormValue("task_id"), c.FormValue("task_text"))
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.Printf("[web] error saving task: %v", err)
		}
		return c.JSON(saveResult{Status: "error", Message: err.Error()})
	}

	s.debugf("saved task %s (%s %d:00)", task.ID, task.Date.Format(models.DateLayout), task.Hour)
	return c.JSON(saveResult{Status: "success", Message: "Task saved successfully!"})
}

func (s *Server) profilePage(c *fiber.Ctx) error {
	return s.render(c, "profile", "Profile", page{})
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	var in auth.ProfileInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form")
	}

	_, err := s.deps.Auth.UpdateProfile(c.UserContext(), currentUser(c).ID, in)
	if err != nil {
		msg, ok := accountMessage(err)
		if !ok {
			return err
		}
		addFlash(c, flashError, msg)
		return c.Redirect("/profile/", fiber.StatusSeeOther)
	}

	addFlash(c, flashSuccess, "Profile updated successfully!")
	return c.Redirect("/profile/", fiber.StatusSeeOther)
}

func (s *Server) changePassword(c *fiber.Ctx) error {
	user := currentUser(c)
	_, err := s.deps.Auth.ChangePassword(c.UserContext(), user,
		c.FormValue("old_password"),
		c.FormValue("new_password1"),
		c.FormValue("new_password2"),
	)
	if err != nil {
		msg, ok := accountMessage(err)
		if !ok {
			return err
		}
		addFlash(c, flashError, msg)
		return c.Redirect("/profile/", fiber.StatusSeeOther)
	}

	log.Printf("[web] user %s changed password", user.Username)
	s.clearSession(c)
	addFlash(c, flashSuccess, "Your password was changed. Please log in again.")
	return c.Redirect("/login/", fiber.StatusSeeOther)
}

// accountMessage maps account errors to the text shown to the user. ok is
// false for errors that are not the user's to fix.
func accountMessage(err error) (msg string, ok bool) {
	switch {
	case errors.Is(err, auth.ErrDuplicateUsername):
		return "Username already exists.", true
	case errors.Is(err, auth.ErrDuplicateEmail):
		return "Email already registered.", true
	case errors.Is(err, auth.ErrPasswordMismatch):
		return "Passwords do not match.", true
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Your current password is incorrect.", true
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrBadRequest):
		return capitalize(err.Error()) + ".", true
	}
	return "", false
}

func loginURL(next string) string {
	if next == "" {
		return "/login/"
	}
	return "/login/?next=" + url.QueryEscape(next)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
