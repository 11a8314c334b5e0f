package web

import (
	"fmt"

	"klar/handlers/api"
	"klar/models"
	"klar/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Settings sections in tab order
var Sections = []string{"account", "features", "notifications", "security", "billing"}

type languageOption struct {
	Code     models.Language
	Name     string
	Selected bool
}

// SettingsHandler renders the settings screens and saves their forms
type SettingsHandler struct {
	store    *session.Store
	settings *api.SettingsHandler
}

func NewSettingsHandler(store *session.Store, settings *api.SettingsHandler) *SettingsHandler {
	return &SettingsHandler{store: store, settings: settings}
}

// ShowSettings renders ?section=, the account section by default
func (h *SettingsHandler) ShowSettings(c *fiber.Ctx) error {
	ws := api.CurrentWorkspace(c)
	s := ws.Settings.Settings()

	section := c.Query("section")
	known := false
	for _, name := range Sections {
		if name == section {
			known = true
			break
		}
	}
	if !known {
		section = Sections[0]
	}

	uiLang, _ := c.Locals("lang").(string)
	languages := make([]languageOption, 0, len(models.Languages))
	for _, l := range models.Languages {
		languages = append(languages, languageOption{
			Code:     l,
			Name:     utils.LanguageName(string(l), uiLang),
			Selected: l == s.TargetLanguage,
		})
	}

	estimate := ""
	if v, err := models.ShieldMonthlyEstimate(s.ShieldPrice); err == nil {
		estimate = fmt.Sprintf("%.2f", v)
	}

	return render(c, h.store, "settings", fiber.Map{
		"Account":        ws.Account(),
		"Settings":       s,
		"IsPro":          s.IsPro(),
		"Section":        section,
		"Sections":       Sections,
		"Languages":      languages,
		"RewindDelays":   models.RewindDelays,
		"ShieldEstimate": estimate,
		"MinShieldPrice": fmt.Sprintf("%.2f", models.MinShieldPrice),
		"MaxShieldPrice": fmt.Sprintf("%.2f", models.MaxShieldPrice),
	})
}

// UpdateAccount saves the name and signature
func (h *SettingsHandler) UpdateAccount(c *fiber.Ctx) error {
	return h.save(c, "account", models.SettingsPatch{
		FullName:       models.Ptr(c.FormValue("fullName")),
		EmailSignature: models.Ptr(c.FormValue("emailSignature")),
	})
}

// UpdateFeatures saves the feature toggles. Pro-only inputs are not
// rendered for essential accounts, so they only reach the patch when sent.
func (h *SettingsHandler) UpdateFeatures(c *fiber.Ctx) error {
	patch := models.SettingsPatch{
		ZenModeEnabled:       models.Ptr(checkbox(c, "zenModeEnabled")),
		PremiumShieldEnabled: models.Ptr(checkbox(c, "premiumShieldEnabled")),
		ImmersionEnabled:     models.Ptr(checkbox(c, "immersionEnabled")),
		RewindEnabled:        models.Ptr(checkbox(c, "rewindEnabled")),
	}

	start, end := c.FormValue("zenStart"), c.FormValue("zenEnd")
	if start != "" || end != "" {
		patch.ZenModeHours = &models.ZenHours{start, end}
	}
	if price := c.FormValue("shieldPrice"); price != "" {
		patch.ShieldPrice = &price
	}
	if lang := c.FormValue("targetLanguage"); lang != "" {
		patch.TargetLanguage = models.Ptr(models.Language(lang))
	}
	if delay := c.FormValue("rewindDelay"); delay != "" {
		patch.RewindDelay = models.Ptr(models.RewindDelay(delay))
	}

	return h.save(c, "features", patch)
}

// UpdateNotifications saves the notification channels
func (h *SettingsHandler) UpdateNotifications(c *fiber.Ctx) error {
	return h.save(c, "notifications", models.SettingsPatch{
		Notifications: &models.Notifications{
			Email: checkbox(c, "notifyEmail"),
			Push:  checkbox(c, "notifyPush"),
			Sound: checkbox(c, "notifySound"),
		},
	})
}

func (h *SettingsHandler) save(c *fiber.Ctx, section string, patch models.SettingsPatch) error {
	ws := api.CurrentWorkspace(c)
	if _, err := h.settings.Apply(ws, patch); err != nil {
		utils.Log.WithField("account", ws.Account()).Warn("Settings update refused: %v", err)
		setFlash(c, h.store, api.SettingsMessageID(err), true)
	} else {
		setFlash(c, h.store, "settings_saved", false)
	}
	return c.Redirect("/settings?section=" + section)
}
