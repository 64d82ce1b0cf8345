package bot

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/callbackquery"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/message"

	"FiscoBot/bot/chat"
	"FiscoBot/internal/lib/sl"
)

// Platform is the session platform tag for Telegram users.
const Platform = "telegram"

type TgBot struct {
	log         *slog.Logger
	api         *tgbotapi.Bot
	engine      *chat.Engine
	botUsername string
	adminId     int64
}

func NewTgBot(botName, apiKey string, adminId int64, engine *chat.Engine, log *slog.Logger) (*TgBot, error) {
	tgBot := &TgBot{
		log:         log.With(sl.Module("tgbot")),
		engine:      engine,
		adminId:     adminId,
		botUsername: botName,
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api

	return tgBot, nil
}

func (t *TgBot) Start() error {

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		// If an error is returned by a handler, log it and continue going.
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			log.Println("an error occurred while handling update:", err.Error())
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	dispatcher.AddHandler(handlers.NewMessage(message.Text, t.handleText))
	dispatcher.AddHandler(handlers.NewCallback(callbackquery.All, t.handleCallback))

	updater := ext.NewUpdater(dispatcher, nil)

	// Start receiving updates.
	err := updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	t.log.Info("telegram bot polling", slog.String("bot", t.botUsername))

	// Idle, to keep updates coming in, and avoid bot stopping.
	updater.Idle()

	return nil
}

func (t *TgBot) handleText(b *tgbotapi.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	if msg == nil || msg.Text == "" {
		return nil
	}

	userID := strconv.FormatInt(ctx.EffectiveUser.Id, 10)
	chatID := strconv.FormatInt(msg.Chat.Id, 10)

	return t.engine.HandleMessage(context.Background(), t, Platform, userID, chatID, msg.Text)
}

func (t *TgBot) handleCallback(b *tgbotapi.Bot, ctx *ext.Context) error {
	cb := ctx.Update.CallbackQuery
	_, _ = cb.Answer(b, nil)

	if cb.Data == "" || cb.Message == nil {
		return nil
	}

	userID := strconv.FormatInt(cb.From.Id, 10)
	chatID := strconv.FormatInt(cb.Message.GetChat().Id, 10)

	// Callback data carries the choice value; the engine matches it the
	// same way as typed input.
	return t.engine.HandleMessage(context.Background(), t, Platform, userID, chatID, cb.Data)
}

// SendText sends a plain text message to the chat.
func (t *TgBot) SendText(chatID, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing chat id: %w", err)
	}
	t.plainResponse(id, text)
	return nil
}

// SendOptions sends a prompt with its choices as an inline keyboard.
func (t *TgBot) SendOptions(chatID, text string, options []chat.Option) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing chat id: %w", err)
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options))
	for _, o := range options {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			{Text: o.Label, CallbackData: o.Value},
		})
	}

	_, err = t.api.SendMessage(id, text, &tgbotapi.SendMessageOpts{
		ReplyMarkup: tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows},
	})
	if err != nil {
		t.log.With(slog.Int64("id", id)).Error("sending options", sl.Err(err))
	}
	return err
}

// SendTyping shows the "typing..." chat action.
func (t *TgBot) SendTyping(chatID string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing chat id: %w", err)
	}
	_, err = t.api.SendChatAction(id, "typing", nil)
	return err
}

// SendMessage notifies the admin chat.
func (t *TgBot) SendMessage(msg string) {

	t.plainResponse(t.adminId, msg)
}

func (t *TgBot) plainResponse(chatId int64, text string) {

	sanitized := sanitize(text, false)

	if sanitized != "" {
		_, err := t.api.SendMessage(chatId, sanitized, &tgbotapi.SendMessageOpts{
			ParseMode: "MarkdownV2",
		})
		if err != nil {
			t.log.With(
				slog.Int64("id", chatId),
			).Warn("sending message", sl.Err(err))
			_, err = t.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{})
			if err != nil {
				t.log.With(
					slog.Int64("id", chatId),
				).Error("sending safe message", sl.Err(err))
			}
		}
	} else {
		t.log.With(
			slog.Int64("id", chatId),
		).Debug("empty message")
	}
}

func sanitize(input string, preserveLinks bool) string {
	// Define a list of reserved characters that need to be escaped
	reservedChars := "\\`_{}#+-.!|()[]"
	if preserveLinks {
		reservedChars = "\\`_{}#+-.!|"
	}

	sanitized := ""
	for _, char := range input {
		if strings.ContainsRune(reservedChars, char) {
			sanitized += "\\" + string(char)
		} else {
			sanitized += string(char)
		}
	}

	return sanitized
}
