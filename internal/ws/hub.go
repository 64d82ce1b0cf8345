package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"FiscoBot/bot/chat"
)

// Platform is the session platform tag for web chat users.
const Platform = "webchat"

// MessageHandler consumes inbound web chat messages. The chat engine
// satisfies it directly.
type MessageHandler interface {
	HandleMessage(ctx context.Context, m chat.Messenger, platform, userID, chatID, text string) error
}

// Event represents a frame sent to a web chat client.
type Event struct {
	Type string      `json:"type"` // "message", "typing"
	Data interface{} `json:"data"`
}

type messageData struct {
	Text    string        `json:"text"`
	Options []chat.Option `json:"options,omitempty"`
}

// Hub tracks active web chat connections keyed by session id and routes
// outbound frames to the right one. It is the Messenger for the webchat
// platform.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	handler    MessageHandler
	log        *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// SetHandler sets the consumer for inbound client messages.
func (h *Hub) SetHandler(handler MessageHandler) {
	h.handler = handler
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.sessionID]; ok {
				close(old.send)
			}
			h.clients[client.sessionID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.sessionID]; ok && current == client {
				delete(h.clients, client.sessionID)
				close(client.send)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) send(sessionID string, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.RLock()
	client, ok := h.clients[sessionID]
	h.mu.RUnlock()
	if !ok {
		// Client went away mid-turn; the session keeps the state for
		// the next connection.
		return nil
	}

	select {
	case client.send <- data:
	default:
		h.mu.Lock()
		delete(h.clients, sessionID)
		close(client.send)
		h.mu.Unlock()
	}
	return nil
}

// SendText delivers a plain text message to the session's connection.
func (h *Hub) SendText(chatID, text string) error {
	return h.send(chatID, &Event{Type: "message", Data: messageData{Text: text}})
}

// SendOptions delivers a prompt with choices; the web client renders them
// as buttons.
func (h *Hub) SendOptions(chatID, text string, options []chat.Option) error {
	return h.send(chatID, &Event{Type: "message", Data: messageData{Text: text, Options: options}})
}

// SendTyping shows the typing indicator on the web client.
func (h *Hub) SendTyping(chatID string) error {
	return h.send(chatID, &Event{Type: "typing", Data: map[string]string{"session_id": chatID}})
}

// clientEvent represents an inbound frame from a web chat client.
type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleClientMessage parses and dispatches an inbound frame.
func (h *Hub) HandleClientMessage(sessionID string, raw []byte) {
	if h.handler == nil {
		return
	}

	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		h.log.Warn("failed to parse client ws message", slog.String("error", err.Error()))
		return
	}

	switch event.Type {
	case "message":
		var data struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			h.log.Warn("failed to parse message data", slog.String("error", err.Error()))
			return
		}
		if data.Text == "" {
			return
		}
		if err := h.handler.HandleMessage(context.Background(), h, Platform, sessionID, sessionID, data.Text); err != nil {
			h.log.Error("failed to handle web chat message",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}
}
