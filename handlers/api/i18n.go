package api

import (
	"klar/utils"

	"github.com/gofiber/fiber/v2"
)

// clientMessages are the catalog entries used by client scripts
var clientMessages = []string{
	"message_deleted",
	"message_archived",
	"message_error",
	"message_connection_error",
	"confirm_delete_email",
	"confirm_yes",
	"confirm_no",
	"mailbox_empty",
	"settings_saved",
	"settings_error_pro_feature",
	"settings_error_invalid",
	"error_404",
	"error_500",
}

// I18nHandler handles i18n-related requests
type I18nHandler struct{}

// GetTranslations returns translations for the client-side JavaScript.
// Unsupported languages fall back to French.
func (h *I18nHandler) GetTranslations(c *fiber.Ctx) error {
	lang := c.Params("lang")
	if !utils.IsSupportedLang(lang) {
		lang = utils.DefaultLang
	}

	localizer := utils.GetLocalizer(lang)

	translations := make(map[string]string, len(clientMessages))
	for _, id := range clientMessages {
		translations[id] = utils.T(localizer, id)
	}

	return c.JSON(fiber.Map{
		"lang":         lang,
		"translations": translations,
	})
}
