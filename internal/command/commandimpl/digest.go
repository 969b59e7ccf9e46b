package commandimpl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/pipeline"
	"github.com/w3wave/social-digest/pkg/formatter"
)

const previewLimit = 10

// parseDay reads an optional YYYY-MM-DD argument. Without one it returns now.
func (c *CommandImpl) parseDay(arg string) (time.Time, string, error) {
	loc := c.Pipeline.Location()
	if arg == "" {
		now := time.Now()
		return now, domain.Day(now, loc).Date(), nil
	}
	w, err := domain.ParseDay(arg, loc)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", arg)
	}
	return w.Start, w.Date(), nil
}

func (c *CommandImpl) replyError(chatID int64, err error) error {
	_, sendErr := c.Telegram.SendMessage(chatID, "❌ "+err.Error())
	return sendErr
}

func (c *CommandImpl) handleRun(ctx context.Context, chatID int64, args string) error {
	date, label, err := c.parseDay(strings.TrimSpace(args))
	if err != nil {
		return c.replyError(chatID, err)
	}

	msgID, err := c.Telegram.SendMessage(chatID, fmt.Sprintf("Running digest for %s... ⏳", label))
	if err != nil {
		return fmt.Errorf("failed to send initial message: %w", err)
	}

	result, err := c.Pipeline.Run(context.WithoutCancel(ctx), date)
	if errors.Is(err, pipeline.ErrRunInProgress) {
		return c.Telegram.EditMessageText(chatID, msgID, "⏳ A digest run is already in progress, try again later.")
	}
	return c.Telegram.EditMessageText(chatID, msgID, fmt.Sprintf("Digest run for %s finished: %s", label, result.Status))
}

func (c *CommandImpl) handleReset(ctx context.Context, chatID int64, args string) error {
	arg := strings.TrimSpace(args)
	if arg == "" {
		_, err := c.Telegram.SendMessage(chatID, "Please provide a date: /reset YYYY-MM-DD")
		return err
	}

	date, label, err := c.parseDay(arg)
	if err != nil {
		return c.replyError(chatID, err)
	}

	n, err := c.Pipeline.Reset(ctx, date)
	if err != nil {
		c.Logger.Error("Reset failed", "date", label, "error", err)
		return c.replyError(chatID, err)
	}

	_, err = c.Telegram.SendMessage(chatID, fmt.Sprintf("♻️ Reset %d posts for %s.", n, label))
	return err
}

func (c *CommandImpl) handlePreview(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)

	var dateArg string
	if len(fields) > 0 {
		dateArg = fields[0]
	}
	date, label, err := c.parseDay(dateArg)
	if err != nil {
		return c.replyError(chatID, err)
	}

	threshold := c.Config.Digest.MinEngagement
	if len(fields) > 1 {
		if threshold, err = strconv.Atoi(fields[1]); err != nil {
			return c.replyError(chatID, fmt.Errorf("invalid min_engagement %q", fields[1]))
		}
	}

	posts, err := c.Pipeline.Preview(ctx, date, threshold)
	if err != nil {
		return c.replyError(chatID, err)
	}

	if len(posts) == 0 {
		_, err := c.Telegram.SendMessage(chatID, fmt.Sprintf("No unprocessed posts at or above %d for %s.", threshold, label))
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 %d posts at or above %d for %s\n", len(posts), threshold, label)
	for i, p := range posts {
		if i == previewLimit {
			fmt.Fprintf(&b, "\n...and %d more", len(posts)-previewLimit)
			break
		}
		fmt.Fprintf(&b, "\n%d. @%s (%s) %s\n%s\n",
			i+1, p.AuthorHandle, formatter.FormatNumber(p.Score()),
			formatter.Truncate(formatter.SingleLine(p.Content), 120), p.SourceURL)
	}

	_, err = c.Telegram.SendMessage(chatID, b.String())
	return err
}

func (c *CommandImpl) handleReports(ctx context.Context, chatID int64, args string) error {
	date, label, err := c.parseDay(strings.TrimSpace(args))
	if err != nil {
		return c.replyError(chatID, err)
	}

	reports, err := c.Pipeline.Reports(ctx, date)
	if err != nil {
		return c.replyError(chatID, err)
	}

	if len(reports) == 0 {
		_, err := c.Telegram.SendMessage(chatID, fmt.Sprintf("No digest attempts recorded for %s.", label))
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📝 Digest attempts for %s:\n", label)
	for _, r := range reports {
		sent := "not sent"
		if r.EmailSent {
			sent = "sent"
		}
		fmt.Fprintf(&b, "#%d at %s: %d posts, %s\n", r.ID, r.CreatedAt.In(c.Pipeline.Location()).Format("15:04"), len(r.PostIDs), sent)
	}

	_, err = c.Telegram.SendMessage(chatID, b.String())
	return err
}
