package command

import "context"

// Client serves operator commands sent to the Telegram bot.
type Client interface {
	HandleCommand(ctx context.Context) error
}
