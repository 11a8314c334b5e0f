package api

import (
	"errors"

	"klar/metrics"
	"klar/models"
	"klar/utils"
	"klar/workspace"

	"github.com/gofiber/fiber/v2"
)

// SettingsHandler reads and patches the settings of the caller's account
type SettingsHandler struct {
	hub *NotificationHub
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(hub *NotificationHub) *SettingsHandler {
	return &SettingsHandler{hub: hub}
}

// SettingsResponse is the settings record plus the values derived from it
type SettingsResponse struct {
	Account        string              `json:"account"`
	Settings       models.UserSettings `json:"settings"`
	ShieldEstimate float64             `json:"shieldEstimate"`
	NextDelivery   string              `json:"nextDelivery"`
}

// NewSettingsResponse builds the response for the account's settings
func NewSettingsResponse(account string, s models.UserSettings) SettingsResponse {
	estimate, err := models.ShieldMonthlyEstimate(s.ShieldPrice)
	if err != nil {
		estimate = 0
	}
	return SettingsResponse{
		Account:        account,
		Settings:       s,
		ShieldEstimate: estimate,
		NextDelivery:   models.ZenNextDelivery(s),
	}
}

// GetSettings returns the active account's settings
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	ws := CurrentWorkspace(c)
	return c.JSON(NewSettingsResponse(ws.Account(), ws.Settings.Settings()))
}

// UpdateSettings applies a JSON SettingsPatch. Invalid values get a 400,
// pro-only values on an essential account a 403.
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	ws := CurrentWorkspace(c)

	var patch models.SettingsPatch
	if err := c.BodyParser(&patch); err != nil {
		metrics.IncrementSettingsUpdate("invalid")
		return utils.BadRequestError("Invalid request", err)
	}
	if patch.Empty() {
		metrics.IncrementSettingsUpdate("invalid")
		return utils.BadRequestError("Nothing to update", nil)
	}

	updated, err := h.Apply(ws, patch)
	if err != nil {
		return err
	}
	return c.JSON(NewSettingsResponse(ws.Account(), updated))
}

// Apply validates patch against the tier of the active account, sanitizes
// its free-text fields and writes it through the settings store
func (h *SettingsHandler) Apply(ws *workspace.Workspace, patch models.SettingsPatch) (models.UserSettings, error) {
	if err := patch.Validate(); err != nil {
		metrics.IncrementSettingsUpdate("invalid")
		return models.UserSettings{}, utils.BadRequestError("Invalid settings", err)
	}
	if err := patch.CheckTier(ws.Settings.Settings().AccountType); err != nil {
		metrics.IncrementSettingsUpdate("forbidden")
		return models.UserSettings{}, utils.ForbiddenError("Feature requires KLAR PRO", err)
	}

	if patch.FullName != nil {
		patch.FullName = models.Ptr(utils.SanitizeText(*patch.FullName))
	}
	if patch.EmailSignature != nil {
		patch.EmailSignature = models.Ptr(utils.SanitizeSignature(*patch.EmailSignature))
	}

	updated := ws.Settings.UpdateSettings(patch)
	metrics.IncrementSettingsUpdate("applied")
	h.hub.NotifySettings(ws.ID, updated)
	return updated, nil
}

// SettingsMessageID maps an Apply error to its catalog message
func SettingsMessageID(err error) string {
	if errors.Is(err, models.ErrProFeature) {
		return "settings_error_pro_feature"
	}
	return "settings_error_invalid"
}
