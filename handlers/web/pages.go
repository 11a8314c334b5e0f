package web

import (
	"klar/models"
	"klar/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Pages reachable through /page/:name
var Pages = []string{"premium-shield", "pricing", "legal"}

// PageHandler renders the public pages
type PageHandler struct {
	store *session.Store
}

// NewPageHandler creates a new page handler
func NewPageHandler(store *session.Store) *PageHandler {
	return &PageHandler{store: store}
}

// ShowHome renders the landing page
func (h *PageHandler) ShowHome(c *fiber.Ctx) error {
	return render(c, h.store, "home", fiber.Map{"Page": "home"})
}

// ShowPage renders one of Pages; any other name is a 404
func (h *PageHandler) ShowPage(c *fiber.Ctx) error {
	name := c.Params("name")
	for _, p := range Pages {
		if p == name {
			return render(c, h.store, "pages/"+name, fiber.Map{
				"Page":           name,
				"MinShieldPrice": models.MinShieldPrice,
				"MaxShieldPrice": models.MaxShieldPrice,
			})
		}
	}
	return utils.NotFoundError("Page not found", nil)
}
