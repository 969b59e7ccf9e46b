package commandimpl

import (
	"context"
	"errors"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpMessage = `👋 Social digest operator bot

/run [YYYY-MM-DD] - run the digest now (default: today)
/preview [YYYY-MM-DD] [min_engagement] - show what would be selected
/reports [YYYY-MM-DD] - list digest attempts for a day
/reset YYYY-MM-DD - mark a day's posts unprocessed
/help - show this message`

func (c *CommandImpl) HandleCommand(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := c.Telegram.GetUpdatesChan(u)
	c.Logger.Info("Command handler started, listening for updates.")

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Command handler shutting down.")
			c.Telegram.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				c.Logger.Warn("Telegram updates channel closed unexpectedly.")
				return errors.New("telegram updates channel closed")
			}

			go func(u tgbotapi.Update) {
				defer func() {
					if r := recover(); r != nil {
						c.Logger.Error("Panic recovered while processing an update", "panic", r, "stack", string(debug.Stack()))
					}
				}()

				if u.Message == nil || !u.Message.IsCommand() {
					return
				}

				if err := c.processCommand(ctx, u); err != nil {
					c.Logger.Error("Error processing command",
						"command", u.Message.Command(),
						"error", err)
				}
			}(update)
		}
	}
}

func (c *CommandImpl) authorized(msg *tgbotapi.Message) bool {
	return msg.From != nil && c.Config.Telegram.User != 0 && msg.From.ID == c.Config.Telegram.User
}

func (c *CommandImpl) processCommand(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	chatID := msg.Chat.ID

	if !c.authorized(msg) {
		c.Logger.Warn("Ignoring command from unknown user", "command", msg.Command(), "chatID", chatID)
		_, err := c.Telegram.SendMessage(chatID, "⛔ Not authorized.")
		return err
	}

	c.Logger.Info("Command received", "command", msg.Command(), "args", msg.CommandArguments())

	args := msg.CommandArguments()
	switch msg.Command() {
	case "start", "help":
		_, err := c.Telegram.SendMessage(chatID, helpMessage)
		return err
	case "run":
		return c.handleRun(ctx, chatID, args)
	case "preview":
		return c.handlePreview(ctx, chatID, args)
	case "reports":
		return c.handleReports(ctx, chatID, args)
	case "reset":
		return c.handleReset(ctx, chatID, args)
	default:
		_, err := c.Telegram.SendMessage(chatID, "Unknown command. Type /help to see the list of available commands.")
		return err
	}
}
