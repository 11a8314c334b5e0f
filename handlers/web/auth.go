package web

import (
	"encoding/json"
	"errors"
	"strings"

	"klar/auth"
	"klar/handlers/api"
	"klar/metrics"
	"klar/utils"
	"klar/workspace"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	signupStepKey = "signup_step"
	signupFormKey = "signup_form"
)

// AuthHandler serves the login, logout and sign-up screens
type AuthHandler struct {
	store      *session.Store
	directory  *auth.Directory
	workspaces *workspace.Manager
}

// NewAuthHandler creates a new instance of AuthHandler
func NewAuthHandler(store *session.Store, directory *auth.Directory, workspaces *workspace.Manager) *AuthHandler {
	return &AuthHandler{
		store:      store,
		directory:  directory,
		workspaces: workspaces,
	}
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err == nil {
		if email, _ := sess.Get(api.SessionEmailKey).(string); email != "" {
			return c.Redirect("/mailbox")
		}
	}
	return render(c, h.store, "login", nil)
}

// HandleLogin processes the login form. Errors are shown inline.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	acc, err := h.directory.Authenticate(email, password)
	metrics.IncrementLogin(api.LoginResult(err))
	if err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, auth.ErrInvalidCredentials) {
			status = fiber.StatusUnauthorized
		}
		c.Status(status)
		return render(c, h.store, "login", fiber.Map{
			"Error": auth.MessageID(err),
			"Email": email,
		})
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return utils.InternalServerError("Session error", err)
	}
	if err := sess.Regenerate(); err != nil {
		return utils.InternalServerError("Session error", err)
	}
	sess.Set(api.SessionEmailKey, acc.Email)
	id := sess.ID()
	if err := sess.Save(); err != nil {
		return utils.InternalServerError("Failed to save session", err)
	}

	h.workspaces.Open(id, acc.Email)
	metrics.SetActiveWorkspaces(h.workspaces.Len())
	utils.Log.WithField("account", acc.Email).Info("User logged in")

	return c.Redirect("/mailbox")
}

// HandleLogout destroys the session and its workspace
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.Redirect("/login")
	}

	h.workspaces.Close(sess.ID())
	metrics.SetActiveWorkspaces(h.workspaces.Len())
	if err := sess.Destroy(); err != nil {
		utils.Log.Error("Failed to destroy session: %v", err)
	}
	return c.Redirect("/login")
}

// ShowSignup renders the current step of the sign-up wizard
func (h *AuthHandler) ShowSignup(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return utils.InternalServerError("Session error", err)
	}
	step, form := loadSignup(sess)
	return render(c, h.store, "signup", signupData(step, form, ""))
}

// HandleSignup validates the submitted step and moves the wizard forward,
// or back when action=back. The last step only shows a summary; no account
// is registered.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return utils.InternalServerError("Session error", err)
	}
	step, form := loadSignup(sess)

	if c.FormValue("action") == "back" {
		if step > 1 {
			step--
		}
		if err := saveSignup(sess, step, form); err != nil {
			return err
		}
		return c.Redirect("/signup")
	}

	switch step {
	case 1:
		form.Plan = c.FormValue("plan")
	case 2:
		form.FirstName = utils.SanitizeText(c.FormValue("firstName"))
		form.LastName = utils.SanitizeText(c.FormValue("lastName"))
		form.Username = auth.NormalizeUsername(c.FormValue("username"))
	case 3:
		form.Password = c.FormValue("password")
		form.ConfirmPassword = c.FormValue("confirmPassword")
	}

	if err := form.ValidateStep(step); err != nil {
		c.Status(fiber.StatusBadRequest)
		return render(c, h.store, "signup", signupData(step, form, auth.MessageID(err)))
	}

	if step < auth.SignupSteps {
		if err := saveSignup(sess, step+1, form); err != nil {
			return err
		}
		return c.Redirect("/signup")
	}

	summary, err := form.Complete()
	if err != nil {
		c.Status(fiber.StatusBadRequest)
		return render(c, h.store, "signup", signupData(step, form, auth.MessageID(err)))
	}

	sess.Delete(signupStepKey)
	sess.Delete(signupFormKey)
	if err := sess.Save(); err != nil {
		return utils.InternalServerError("Failed to save session", err)
	}
	utils.Log.Info("Sign-up completed for %s (%s)", summary.Address, summary.Tier)

	data := signupData(step, form, "")
	data["Summary"] = summary
	return render(c, h.store, "signup", data)
}

func signupData(step int, form auth.SignupForm, errID string) fiber.Map {
	return fiber.Map{
		"Step":   step,
		"Steps":  []int{1, 2, 3},
		"Form":   form,
		"Domain": auth.AddressDomain,
		"Error":  errID,
	}
}

func loadSignup(sess *session.Session) (int, auth.SignupForm) {
	var form auth.SignupForm
	step, _ := sess.Get(signupStepKey).(int)
	if step < 1 || step > auth.SignupSteps {
		step = 1
	}
	if raw, ok := sess.Get(signupFormKey).(string); ok {
		if err := json.Unmarshal([]byte(raw), &form); err != nil {
			utils.Log.Warn("Discarding unreadable sign-up state: %v", err)
			return 1, auth.SignupForm{}
		}
	}
	return step, form
}

func saveSignup(sess *session.Session, step int, form auth.SignupForm) error {
	raw, err := json.Marshal(form)
	if err != nil {
		return utils.InternalServerError("Failed to save sign-up state", err)
	}
	sess.Set(signupStepKey, step)
	sess.Set(signupFormKey, string(raw))
	if err := sess.Save(); err != nil {
		return utils.InternalServerError("Failed to save session", err)
	}
	return nil
}
