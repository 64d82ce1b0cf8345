package main

import (
	"flag"
	"log/slog"
	"time"

	"FiscoBot/ai/gpt"
	"FiscoBot/bot"
	"FiscoBot/bot/chat"
	whatsappbot "FiscoBot/bot/whatsapp"
	"FiscoBot/bot/workflow"
	"FiscoBot/bot/workflows/igs"
	"FiscoBot/bot/workflows/onboarding"
	"FiscoBot/bot/workflows/registration"
	"FiscoBot/internal/config"
	repository "FiscoBot/internal/database"
	"FiscoBot/internal/http-server/api"
	"FiscoBot/internal/lib/logger"
	"FiscoBot/internal/lib/sl"
	"FiscoBot/internal/service/taxcalc"
	"FiscoBot/internal/service/taxpayer"
	"FiscoBot/internal/storage"
	"FiscoBot/internal/ws"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	lg.Info("starting fiscobot", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	taxpayerService := taxpayer.NewService(lg)

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
	}
	if db != nil {
		taxpayerService.SetRepository(db)
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	}

	services := workflow.NewServiceRegistry()
	services.Register("taxcalc", taxcalc.NewService(lg))
	services.Register("taxpayer", taxpayerService)

	workflows := workflow.NewRegistry()
	for _, def := range []*workflow.Definition{
		onboarding.New(),
		igs.New(),
		registration.New(),
	} {
		if err := workflows.Register(def); err != nil {
			lg.Error("registering workflow", slog.String("workflow_id", string(def.ID)), sl.Err(err))
			return
		}
	}

	sessionTTL := time.Duration(conf.Bot.SessionTTL) * time.Minute

	var sessions chat.SessionRepository
	if db != nil {
		sessions = db
	} else {
		sessions = storage.NewMemoryStore(sessionTTL)
		lg.Info("using in-memory session store")
	}

	assistant := gpt.NewAssistant(conf, lg)
	var ai chat.AIProvider
	if assistant != nil {
		ai = assistant
		lg.With(
			sl.Secret("openai_key", conf.OpenAI.ApiKey),
		).Info("assistant initialized")
	}

	engine := chat.NewEngine(chat.Config{
		IntentConfidence: conf.Bot.IntentConfidence,
		WorkflowTimeout:  time.Duration(conf.Bot.WorkflowTimeout) * time.Minute,
		SessionTTL:       sessionTTL,
		NavDepth:         conf.Bot.NavStackDepth,
		ReplyDelay:       time.Duration(conf.Bot.ReplyDelayMs) * time.Millisecond,
		DefaultLanguage:  conf.Bot.DefaultLanguage,
		Onboarding:       onboarding.ID,
	}, workflows, services, chat.NewRepositorySessionStorage(sessions), ai, lg)

	// Initialize Telegram bot if enabled
	if conf.Telegram.Enabled {
		tgBot, err := bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, engine, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", slog.String("error", err.Error()))
		} else {
			// Forward error logs to the admin chat
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelError)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")

			go func() {
				if err := tgBot.Start(); err != nil {
					lg.Error("telegram bot error", slog.String("error", err.Error()))
				}
			}()
		}
	}

	var waBot *whatsappbot.WhatsAppBot
	if conf.WhatsApp.Enabled {
		waBot = whatsappbot.NewWhatsAppBot(conf, engine, lg)
		lg.With(
			slog.String("phone_id", conf.WhatsApp.PhoneId),
		).Info("whatsapp bot initialized")
	}

	hub := ws.NewHub(lg)
	hub.SetHandler(engine)
	go hub.Run()

	var auth api.Auth
	if db != nil {
		auth = db
		if _, err := db.GenerateApiKey("admin"); err != nil {
			lg.With(
				sl.Err(err),
			).Error("generate admin api key")
		}
	}

	// *** blocking start with http server ***
	err = api.New(conf, engine, waBot, hub, auth, lg)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
