// Package normalizer turns raw timeline items into canonical post candidates and
// rejects anything that is not original content by the account.
package normalizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/twitter"
)

type Reason string

const (
	Accepted         Reason = "accepted"
	MissingID        Reason = "missing_id"
	MissingContent   Reason = "missing_content"
	MissingCreatedAt Reason = "missing_created_at"
	Reshare          Reason = "reshare"
	ReplyToOther     Reason = "reply_to_other"
)

const urlTemplate = "https://twitter.com/%s/status/%s"

// Normalize maps raw into a Post for handle. The returned Post is only meaningful
// when the reason is Accepted. IngestedAt is left for the persistence gate.
func Normalize(handle string, raw twitter.RawTweet) (domain.Post, Reason) {
	handle = CleanHandle(handle)
	id := strings.TrimSpace(raw.ID)

	if id == "" {
		return domain.Post{}, MissingID
	}
	if strings.TrimSpace(raw.Text) == "" {
		return domain.Post{}, MissingContent
	}
	if raw.References(twitter.RefRetweeted) {
		return domain.Post{}, Reshare
	}
	if isReplyToOther(raw) {
		return domain.Post{}, ReplyToOther
	}

	createdAt, ok := parseCreatedAt(raw.CreatedAt)
	if !ok {
		return domain.Post{}, MissingCreatedAt
	}

	post := domain.Post{
		ExternalID:   id,
		AuthorHandle: handle,
		Content:      raw.Text,
		CreatedAt:    createdAt,
		SourceURL:    fmt.Sprintf(urlTemplate, handle, id),
	}
	if m := raw.PublicMetrics; m != nil {
		post.Metrics = domain.Metrics{
			Likes:    nonNegative(m.LikeCount),
			Reshares: nonNegative(m.RetweetCount),
			Replies:  nonNegative(m.ReplyCount),
			Quotes:   nonNegative(m.QuoteCount),
		}
	}
	return post, Accepted
}

// CleanHandle strips whitespace and a leading '@'.
func CleanHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

// Self-replies continue the author's own thread and count as original.
func isReplyToOther(raw twitter.RawTweet) bool {
	if raw.InReplyToUserID != "" {
		return raw.AuthorID == "" || raw.InReplyToUserID != raw.AuthorID
	}
	return raw.References(twitter.RefRepliedTo)
}

func parseCreatedAt(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
