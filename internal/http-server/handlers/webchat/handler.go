package webchat

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"FiscoBot/bot/chat"
	"FiscoBot/internal/lib/api/response"
	"FiscoBot/internal/lib/sl"
	"FiscoBot/internal/ws"
)

// ChatRequest is one inbound web chat turn.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatReply is one outbound bot message within a turn.
type ChatReply struct {
	Text    string        `json:"text"`
	Options []chat.Option `json:"options,omitempty"`
}

// ChatResponse carries the session id back so the client can continue
// the conversation.
type ChatResponse struct {
	SessionID string      `json:"session_id"`
	Replies   []ChatReply `json:"replies"`
}

// collector buffers the bot's outbound messages for one synchronous turn.
type collector struct {
	replies []ChatReply
}

func (c *collector) SendText(_ string, text string) error {
	c.replies = append(c.replies, ChatReply{Text: text})
	return nil
}

func (c *collector) SendOptions(_ string, text string, options []chat.Option) error {
	c.replies = append(c.replies, ChatReply{Text: text, Options: options})
	return nil
}

func (c *collector) SendTyping(_ string) error {
	return nil
}

// Chat handles one request/response web chat turn. The same session can
// later continue over the websocket transport.
func Chat(log *slog.Logger, engine *chat.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.webchat"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if req.Message == "" {
			logger.Error("no message provided")
			render.JSON(w, r, response.Error("No message provided"))
			return
		}
		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}

		out := &collector{}
		err := engine.HandleMessage(r.Context(), out, ws.Platform, req.SessionID, req.SessionID, req.Message)
		if err != nil {
			logger.Error("handling chat message", sl.Err(err))
			render.JSON(w, r, response.Error("Chat failed"))
			return
		}

		render.JSON(w, r, response.Ok(ChatResponse{
			SessionID: req.SessionID,
			Replies:   out.replies,
		}))
	}
}
