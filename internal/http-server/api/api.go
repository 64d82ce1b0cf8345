package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"FiscoBot/bot/chat"
	whatsappbot "FiscoBot/bot/whatsapp"
	"FiscoBot/internal/config"
	"FiscoBot/internal/http-server/handlers/errors"
	"FiscoBot/internal/http-server/handlers/key"
	"FiscoBot/internal/http-server/handlers/webchat"
	"FiscoBot/internal/http-server/handlers/whatsapp"
	"FiscoBot/internal/http-server/middleware/authenticate"
	"FiscoBot/internal/lib/api/response"
	"FiscoBot/internal/lib/sl"
	"FiscoBot/internal/ws"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

// Auth combines the authenticated surface's backend needs.
type Auth interface {
	authenticate.Authenticate
	key.Core
}

// New builds the router and serves it. Blocks until the listener fails.
// Webhook and websocket routes stay public; the management API requires
// a bearer key.
func New(conf *config.Config, engine *chat.Engine, waBot *whatsappbot.WhatsAppBot, hub *ws.Hub, auth Auth, log *slog.Logger) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok("alive"))
	})

	if waBot != nil {
		router.Route("/webhook/whatsapp", func(r chi.Router) {
			r.Get("/", whatsapp.WebhookVerify(log, waBot))
			r.Post("/", whatsapp.WebhookHandler(log, waBot))
		})
	}

	if hub != nil {
		router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWs(hub, log, w, r)
		})
	}

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.Timeout(30 * time.Second))
		v1.Use(authenticate.New(log, auth))

		v1.Post("/chat", webchat.Chat(log, engine))
		v1.Route("/key", func(r chi.Router) {
			r.Post("/new", key.Generate(log, auth))
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
