package web

import (
	"klar/handlers/api"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const flashKey = "flash"

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	MessageID string
	Error     bool
}

// render adds the data every page needs: localizer, language, CSRF token
// and the pending flash message
func render(c *fiber.Ctx, store *session.Store, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["L"] = api.Localizer(c)
	data["Lang"] = c.Locals("lang")
	data["CSRFToken"] = c.Locals("csrf")
	data["Path"] = c.Path()

	if store != nil {
		if sess, err := store.Get(c); err == nil {
			email, _ := sess.Get(api.SessionEmailKey).(string)
			data["LoggedIn"] = email != ""
			if id, ok := sess.Get(flashKey).(string); ok && id != "" {
				isErr, _ := sess.Get(flashKey + "_error").(bool)
				data["Flash"] = Flash{MessageID: id, Error: isErr}
				sess.Delete(flashKey)
				sess.Delete(flashKey + "_error")
				if err := sess.Save(); err != nil {
					return err
				}
			}
		}
	}

	return c.Render(name, data)
}

// setFlash stores a message for the next page
func setFlash(c *fiber.Ctx, store *session.Store, messageID string, isErr bool) {
	sess, err := store.Get(c)
	if err != nil {
		return
	}
	sess.Set(flashKey, messageID)
	sess.Set(flashKey+"_error", isErr)
	_ = sess.Save()
}

func checkbox(c *fiber.Ctx, name string) bool {
	switch c.FormValue(name) {
	case "on", "true", "1":
		return true
	}
	return false
}
