package api

import (
	"errors"
	"time"

	"klar/auth"
	"klar/metrics"
	"klar/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler issues bearer tokens for API clients
type AuthHandler struct {
	directory *auth.Directory
	secret    string
	ttl       time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(directory *auth.Directory, secret string, ttl time.Duration) *AuthHandler {
	return &AuthHandler{directory: directory, secret: secret, ttl: ttl}
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Login checks the credentials and returns a signed token
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	acc, err := h.directory.Authenticate(req.Email, req.Password)
	metrics.IncrementLogin(LoginResult(err))
	if err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, auth.ErrInvalidCredentials) {
			status = fiber.StatusUnauthorized
		}
		return c.Status(status).JSON(fiber.Map{
			"error": utils.T(Localizer(c), auth.MessageID(err)),
		})
	}

	token, err := auth.GenerateToken(acc, h.secret, h.ttl)
	if err != nil {
		return utils.InternalServerError("Failed to create authentication token", err)
	}

	utils.Log.WithField("account", acc.Email).Info("API token issued")
	return c.JSON(fiber.Map{
		"token":     token,
		"tokenType": "Bearer",
		"expiresIn": int(h.ttl.Seconds()),
		"tier":      acc.Tier,
	})
}

// LoginResult is the metrics label of a login outcome
func LoginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, auth.ErrMissingFields):
		return "missing_fields"
	case errors.Is(err, auth.ErrInvalidEmail):
		return "invalid_email"
	}
	return "invalid"
}
