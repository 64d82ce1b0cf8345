package key

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"FiscoBot/internal/lib/api/response"
	"FiscoBot/internal/lib/sl"
)

type Core interface {
	GenerateApiKey(username string) (string, error)
}

// Generate issues an API key for a named consumer, reusing the existing
// one when present.
func Generate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.key"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("key generation not available")
			render.JSON(w, r, response.Error("Key generation not available"))
			return
		}

		var req struct {
			Username string `json:"username"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if req.Username == "" {
			render.JSON(w, r, response.Error("No username provided"))
			return
		}

		key, err := handler.GenerateApiKey(req.Username)
		if err != nil {
			logger.Error("generating api key", sl.Err(err))
			render.JSON(w, r, response.Error("Key generation failed"))
			return
		}

		render.JSON(w, r, response.Ok(map[string]string{"key": key}))
	}
}
