package web

import (
	"errors"
	"net/url"

	"klar/handlers/api"
	"klar/models"
	"klar/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// MailboxHandler renders the mailbox and runs its form actions
type MailboxHandler struct {
	store    *session.Store
	emails   *api.EmailHandler
	settings *api.SettingsHandler
}

// NewMailboxHandler creates a new mailbox handler
func NewMailboxHandler(store *session.Store, emails *api.EmailHandler, settings *api.SettingsHandler) *MailboxHandler {
	return &MailboxHandler{store: store, emails: emails, settings: settings}
}

// sidebarEntry is one folder of the sidebar
type sidebarEntry struct {
	View   models.View
	Label  string
	Count  int
	Active bool
}

// ShowMailbox renders ?view= filtered by ?q=. ?open=<id> opens an email,
// ?open=0 closes the opened one.
func (h *MailboxHandler) ShowMailbox(c *fiber.Ctx) error {
	ws := api.CurrentWorkspace(c)

	view, err := models.ParseView(c.Query("view"))
	if err != nil {
		return utils.NotFoundError("Unknown view", err)
	}
	query := c.Query("q")

	if c.Query("open") != "" {
		if id := c.QueryInt("open"); id > 0 {
			if _, err := ws.Mailbox.Open(id); err != nil {
				ws.Mailbox.ClearSelection()
			}
		} else {
			ws.Mailbox.ClearSelection()
		}
	}

	counters := ws.Mailbox.Counters()
	emails := api.NewEmailViews(ws.Mailbox.List(view, query))
	s := ws.Settings.Settings()

	var selected *api.EmailView
	if e, ok := ws.Mailbox.Selected(); ok {
		v := api.NewEmailView(e)
		selected = &v
	}

	return render(c, h.store, "mailbox", fiber.Map{
		"Account":      ws.Account(),
		"Settings":     s,
		"IsPro":        s.IsPro(),
		"View":         view,
		"Query":        query,
		"Sidebar":      sidebar(view, counters),
		"Counters":     counters,
		"Emails":       emails,
		"Selected":     selected,
		"NextDelivery": models.ZenNextDelivery(s),
		"Actions": []string{
			api.ActionStar, api.ActionArchive, api.ActionTrash, api.ActionRestore, api.ActionDelete,
		},
	})
}

func sidebar(active models.View, c models.Counters) []sidebarEntry {
	counts := map[models.View]int{
		models.ViewInbox:    c.Unread,
		models.ViewStarred:  c.Starred,
		models.ViewArchived: c.Archived,
		models.ViewTrash:    c.Trash,
	}
	out := make([]sidebarEntry, 0, len(models.Views))
	for _, v := range models.Views {
		out = append(out, sidebarEntry{
			View:   v,
			Label:  "view_" + string(v),
			Count:  counts[v],
			Active: v == active,
		})
	}
	return out
}

// HandleAction runs POST /mailbox/:id/:action and goes back to the list
func (h *MailboxHandler) HandleAction(c *fiber.Ctx) error {
	ws := api.CurrentWorkspace(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequestError("Invalid email id", err)
	}

	action := c.Params("action")
	if action == api.ActionRead {
		return utils.NotFoundError("Unknown action", nil)
	}
	if _, err := h.emails.Perform(ws, action, id); err != nil {
		if errors.Is(err, api.ErrUnknownAction) {
			return utils.NotFoundError("Unknown action", err)
		}
		setFlash(c, h.store, "message_error", true)
		return c.Redirect(backToList(c))
	}

	switch action {
	case api.ActionTrash, api.ActionDelete:
		setFlash(c, h.store, "message_deleted", false)
	case api.ActionArchive:
		setFlash(c, h.store, "message_archived", false)
	}
	return c.Redirect(backToList(c))
}

// HandleZen toggles Zen Mode on the mailbox header
func (h *MailboxHandler) HandleZen(c *fiber.Ctx) error {
	ws := api.CurrentWorkspace(c)
	active := !ws.Settings.Settings().ZenModeActive
	if _, err := h.settings.Apply(ws, models.SettingsPatch{ZenModeActive: &active}); err != nil {
		setFlash(c, h.store, api.SettingsMessageID(err), true)
	}
	return c.Redirect(backToList(c))
}

// HandleFeature toggles one of the sidebar features. Turning Premium
// Shield on is refused for essential accounts.
func (h *MailboxHandler) HandleFeature(c *fiber.Ctx) error {
	ws := api.CurrentWorkspace(c)
	s := ws.Settings.Settings()

	var patch models.SettingsPatch
	switch c.Params("feature") {
	case "shield":
		patch.PremiumShieldEnabled = models.Ptr(!s.PremiumShieldEnabled)
	case "immersion":
		patch.ImmersionEnabled = models.Ptr(!s.ImmersionEnabled)
	case "rewind":
		patch.RewindEnabled = models.Ptr(!s.RewindEnabled)
	default:
		return utils.NotFoundError("Unknown feature", nil)
	}

	if _, err := h.settings.Apply(ws, patch); err != nil {
		setFlash(c, h.store, api.SettingsMessageID(err), true)
	}
	return c.Redirect(backToList(c))
}

// backToList rebuilds the list URL from the view and q form fields
func backToList(c *fiber.Ctx) string {
	v := url.Values{}
	if view, err := models.ParseView(c.FormValue("view")); err == nil && view != models.ViewInbox {
		v.Set("view", string(view))
	}
	if q := c.FormValue("q"); q != "" {
		v.Set("q", q)
	}
	if len(v) == 0 {
		return "/mailbox"
	}
	return "/mailbox?" + v.Encode()
}
