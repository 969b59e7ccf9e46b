package telegramimpl

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/w3wave/social-digest/internal/telegram"
	"github.com/w3wave/social-digest/pkg/config"
	"github.com/w3wave/social-digest/pkg/formatter"
	"github.com/w3wave/social-digest/pkg/logger"
	"go.uber.org/fx"
)

// Telegram caps a text message at 4096 characters.
const maxMessageLength = 4096

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type TelegramImpl struct {
	TgBot  *tgbotapi.BotAPI
	Logger logger.Logger
	UserID int64
}

// New returns a bot-backed client, or a no-op one when TELEGRAM_TOKEN is unset.
func New(opts Opts) (telegram.Client, error) {
	log := opts.Logger.WithComponent("Telegram")

	if opts.Config.Telegram.Token == "" {
		log.Info("TELEGRAM_TOKEN not set, run notifications disabled")
		return Nop{}, nil
	}

	tgBot, err := tgbotapi.NewBotAPI(opts.Config.Telegram.Token)
	if err != nil {
		log.Error("Error creating bot", "error", err)
		return nil, err
	}

	return &TelegramImpl{
		TgBot:  tgBot,
		Logger: log,
		UserID: opts.Config.Telegram.User,
	}, nil
}

var _ telegram.Client = (*TelegramImpl)(nil)

// SendMessage sends a message to a specific chat ID
func (tg *TelegramImpl) SendMessage(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, formatter.Truncate(text, maxMessageLength))
	msg.DisableWebPagePreview = true

	sentMsg, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending message",
			"chatID", chatID,
			"error", err)
		return 0, fmt.Errorf("failed to send message: %w", err)
	}

	tg.Logger.Info("Message sent",
		"chatID", chatID,
		"messageID", sentMsg.MessageID)
	return sentMsg.MessageID, nil
}

func (tg *TelegramImpl) EditMessageText(chatID int64, messageID int, newText string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, formatter.Truncate(newText, maxMessageLength))
	edit.DisableWebPagePreview = true

	if _, err := tg.TgBot.Send(edit); err != nil {
		tg.Logger.Error("Error editing message",
			"chatID", chatID,
			"messageID", messageID,
			"error", err)
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

func (tg *TelegramImpl) GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return tg.TgBot.GetUpdatesChan(u)
}

func (tg *TelegramImpl) StopReceivingUpdates() {
	tg.TgBot.StopReceivingUpdates()
}

// SendMessageToUser sends a text message to the configured user
func (tg *TelegramImpl) SendMessageToUser(message string) {
	if tg.UserID == 0 {
		tg.Logger.Warn("TELEGRAM_USER not set, dropping notification")
		return
	}
	if _, err := tg.SendMessage(tg.UserID, message); err != nil {
		tg.Logger.Error("Error sending message to user",
			"userID", tg.UserID,
			"error", err)
	}
}

// Nop drops every message.
type Nop struct{}

var _ telegram.Client = Nop{}

func (Nop) SendMessage(int64, string) (int, error) { return 0, nil }

func (Nop) SendMessageToUser(string) {}

func (Nop) EditMessageText(int64, int, string) error { return nil }

// GetUpdatesChan returns a nil channel, so readers block until their context ends.
func (Nop) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel { return nil }

func (Nop) StopReceivingUpdates() {}
