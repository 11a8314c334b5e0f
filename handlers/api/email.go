package api

import (
	"errors"
	"fmt"

	"klar/mailbox"
	"klar/metrics"
	"klar/models"
	"klar/utils"
	"klar/workspace"

	"github.com/gofiber/fiber/v2"
)

// Mailbox actions
const (
	ActionStar    = "star"
	ActionRead    = "read"
	ActionArchive = "archive"
	ActionTrash   = "trash"
	ActionRestore = "restore"
	ActionDelete  = "delete"
)

var ErrUnknownAction = errors.New("unknown mailbox action")

// EmailView is an email as served to clients, with the derived retention
// fields and its IMAP flags
type EmailView struct {
	models.Email
	DaysRemaining int      `json:"daysRemaining"`
	Expiring      bool     `json:"expiring"`
	Flags         []string `json:"flags"`
}

// NewEmailView decorates e
func NewEmailView(e models.Email) EmailView {
	days, expiring := mailbox.Expiry(e)
	return EmailView{Email: e, DaysRemaining: days, Expiring: expiring, Flags: e.Flags()}
}

// NewEmailViews decorates every email
func NewEmailViews(emails []models.Email) []EmailView {
	out := make([]EmailView, 0, len(emails))
	for _, e := range emails {
		out = append(out, NewEmailView(e))
	}
	return out
}

// EmailHandler serves the mailbox of the caller's workspace
type EmailHandler struct {
	hub *NotificationHub
}

// NewEmailHandler creates a new email handler
func NewEmailHandler(hub *NotificationHub) *EmailHandler {
	return &EmailHandler{hub: hub}
}

// ListEmails returns one page of the emails of ?view= matching ?q=, with
// the counters. ?flag= keeps only the emails carrying that IMAP flag.
func (h *EmailHandler) ListEmails(c *fiber.Ctx) error {
	ws := CurrentWorkspace(c)
	view, err := models.ParseView(c.Query("view"))
	if err != nil {
		return utils.BadRequestError("Unknown view", err)
	}

	emails := ws.Mailbox.List(view, c.Query("q"))
	if flag := c.Query("flag"); flag != "" {
		emails = withFlag(emails, flag)
	}
	page, start, end := models.Paginate(len(emails), c.QueryInt("page", 1), c.QueryInt("pageSize", models.DefaultPageSize))

	return c.JSON(fiber.Map{
		"emails":     NewEmailViews(emails[start:end]),
		"counters":   ws.Mailbox.Counters(),
		"view":       view,
		"pagination": page,
	})
}

// GetEmail opens an email, which marks it read
func (h *EmailHandler) GetEmail(c *fiber.Ctx) error {
	ws := CurrentWorkspace(c)
	id, err := emailID(c)
	if err != nil {
		return err
	}

	e, err := ws.Mailbox.Open(id)
	if err != nil {
		return mailboxError(err)
	}
	h.hub.NotifyCounters(ws.ID, ws.Mailbox.Counters())

	return c.JSON(NewEmailView(e))
}

// Action returns the handler of one mailbox action
func (h *EmailHandler) Action(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ws := CurrentWorkspace(c)
		id, err := emailID(c)
		if err != nil {
			return err
		}

		e, err := h.Perform(ws, action, id)
		if err != nil {
			return mailboxError(err)
		}
		if action == ActionDelete {
			return c.JSON(fiber.Map{
				"success":  true,
				"counters": ws.Mailbox.Counters(),
			})
		}
		return c.JSON(fiber.Map{
			"success":  true,
			"email":    NewEmailView(e),
			"counters": ws.Mailbox.Counters(),
		})
	}
}

// Perform runs a mailbox action on the workspace and notifies its
// subscribers. Delete returns a zero email.
func (h *EmailHandler) Perform(ws *workspace.Workspace, action string, id int) (models.Email, error) {
	var (
		e   models.Email
		err error
	)

	switch action {
	case ActionStar:
		e, err = ws.Mailbox.ToggleStar(id)
	case ActionRead:
		e, err = ws.Mailbox.MarkAsRead(id)
	case ActionArchive:
		e, err = ws.Mailbox.Archive(id)
	case ActionTrash:
		e, err = ws.Mailbox.MoveToTrash(id)
	case ActionRestore:
		e, err = ws.Mailbox.Restore(id)
	case ActionDelete:
		err = ws.Mailbox.Delete(id)
	default:
		return models.Email{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if err != nil {
		return models.Email{}, err
	}

	metrics.IncrementMailboxAction(action)
	utils.Log.WithField("account", ws.Account()).Debug("Mailbox %s on email %d", action, id)
	h.hub.NotifyCounters(ws.ID, ws.Mailbox.Counters())
	return e, nil
}

func withFlag(emails []models.Email, flag string) []models.Email {
	out := emails[:0:0]
	for _, e := range emails {
		if e.HasFlag(flag) {
			out = append(out, e)
		}
	}
	return out
}

func emailID(c *fiber.Ctx) (int, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, utils.BadRequestError("Invalid email id", err)
	}
	return id, nil
}

func mailboxError(err error) error {
	switch {
	case errors.Is(err, mailbox.ErrEmailNotFound):
		return utils.NotFoundError("Email not found", err)
	case errors.Is(err, ErrUnknownAction):
		return utils.NotFoundError("Unknown action", err)
	}
	return utils.InternalServerError("Mailbox error", err)
}
