package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"klar/models"
	"klar/utils"
	"klar/workspace"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// Notification types
const (
	NotificationCounters = "counters"
	NotificationSettings = "settings"
)

// Notification is pushed to every open event stream of a workspace
type Notification struct {
	ID   string      `json:"id"`
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	Time time.Time   `json:"time"`
}

// NotificationHub fans out mailbox and settings changes to the SSE and
// websocket subscribers of each workspace. Workspaces of one account hold
// their own mailbox and settings copy, so streams never cross them.
type NotificationHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan Notification // workspace id -> subscriber id
	keepAlive   time.Duration
	closed      bool
	log         *utils.Logger
}

// NewNotificationHub creates an empty hub
func NewNotificationHub(log *utils.Logger) *NotificationHub {
	if log == nil {
		log = utils.Log
	}
	return &NotificationHub{
		subscribers: make(map[string]map[string]chan Notification),
		keepAlive:   30 * time.Second,
		log:         log,
	}
}

// Subscribe registers a new subscriber for the workspace
func (h *NotificationHub) Subscribe(workspaceID string) (string, <-chan Notification) {
	id := uuid.NewString()
	ch := make(chan Notification, 10)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return id, ch
	}
	if h.subscribers[workspaceID] == nil {
		h.subscribers[workspaceID] = make(map[string]chan Notification)
	}
	h.subscribers[workspaceID][id] = ch
	h.mu.Unlock()

	h.log.Debug("Subscriber %s connected to workspace %s", id, workspaceID)
	return id, ch
}

// Unsubscribe removes the subscriber and closes its channel
func (h *NotificationHub) Unsubscribe(workspaceID, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subscribers[workspaceID]
	ch, ok := subs[id]
	if !ok {
		return
	}
	delete(subs, id)
	close(ch)
	if len(subs) == 0 {
		delete(h.subscribers, workspaceID)
	}
	h.log.Debug("Subscriber %s disconnected from workspace %s", id, workspaceID)
}

// Close ends every open stream. Later subscribers get a closed channel.
func (h *NotificationHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for workspaceID, subs := range h.subscribers {
		for _, ch := range subs {
			close(ch)
		}
		delete(h.subscribers, workspaceID)
	}
}

// Subscribers returns the number of open streams of the workspace
func (h *NotificationHub) Subscribers(workspaceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[workspaceID])
}

// Publish sends n to every subscriber of the workspace. Slow subscribers
// miss it.
func (h *NotificationHub) Publish(workspaceID string, n Notification) {
	n.ID = uuid.NewString()
	n.Time = time.Now()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subscribers[workspaceID] {
		select {
		case ch <- n:
		default:
			h.log.Warn("Notification channel full for subscriber %s", id)
		}
	}
}

// NotifyCounters publishes new sidebar counters
func (h *NotificationHub) NotifyCounters(workspaceID string, counters models.Counters) {
	h.Publish(workspaceID, Notification{Type: NotificationCounters, Data: counters})
}

// NotifySettings publishes the new settings record
func (h *NotificationHub) NotifySettings(workspaceID string, settings models.UserSettings) {
	h.Publish(workspaceID, Notification{Type: NotificationSettings, Data: settings})
}

// HandleSSE streams the notifications of the caller's workspace as
// Server-Sent Events, starting with the current counters
func (h *NotificationHub) HandleSSE(c *fiber.Ctx) error {
	ws := CurrentWorkspace(c)
	if ws == nil {
		return utils.UnauthorizedError("Not logged in", nil)
	}
	workspaceID := ws.ID
	initial := Notification{ID: uuid.NewString(), Type: NotificationCounters, Data: ws.Mailbox.Counters(), Time: time.Now()}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	id, ch := h.Subscribe(workspaceID)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.Unsubscribe(workspaceID, id)

		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()

		if err := writeEvent(w, initial); err != nil {
			return
		}
		for {
			select {
			case n, ok := <-ch:
				if !ok {
					return
				}
				if err := writeEvent(w, n); err != nil {
					return
				}
			case <-ticker.C:
				w.WriteString(": keepalive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}

func writeEvent(w *bufio.Writer, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", n.ID, n.Type, data)
	return w.Flush()
}

// HandleWebSocket pushes the notifications of the caller's workspace as JSON
// messages until the client goes away
func (h *NotificationHub) HandleWebSocket(c *websocket.Conn) {
	defer c.Close()

	ws, ok := c.Locals(localsWorkspace).(*workspace.Workspace)
	if !ok || ws == nil {
		return
	}
	workspaceID := ws.ID

	id, ch := h.Subscribe(workspaceID)
	defer h.Unsubscribe(workspaceID, id)

	// reads only detect the close
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := c.WriteJSON(Notification{ID: uuid.NewString(), Type: NotificationCounters, Data: ws.Mailbox.Counters(), Time: time.Now()}); err != nil {
		return
	}

	for {
		select {
		case n, ok := <-ch:
			if !ok {
				return
			}
			if err := c.WriteJSON(n); err != nil {
				h.log.Error("Failed to send WebSocket notification: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}
