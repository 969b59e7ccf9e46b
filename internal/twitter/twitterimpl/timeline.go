package twitterimpl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/twitter"
)

const (
	tweetFields = "created_at,public_metrics,referenced_tweets,in_reply_to_user_id,author_id,conversation_id"

	// The API rejects an end_time closer than this to the present.
	endTimeSlack = 10 * time.Second
)

func (t *TwitterImpl) FetchTimeline(ctx context.Context, handle string, window domain.Window, fn twitter.PageFunc) error {
	handle = cleanHandle(handle)

	userID, err := t.ResolveUserID(ctx, handle)
	if err != nil {
		return err
	}

	path := "/2/users/" + url.PathEscape(userID) + "/tweets"
	token := ""
	fetched := 0

	for page := 1; t.maxPages <= 0 || page <= t.maxPages; page++ {
		query := t.timelineQuery(window, token)

		var resp twitter.TimelineResponse
		op := func() error {
			resp = twitter.TimelineResponse{}
			return t.get(ctx, endpointTimeline, path, query, &resp)
		}
		if err := t.policy.Do(ctx, t.logger, "FetchTimeline:"+handle, op); err != nil {
			return fmt.Errorf("fetch timeline page %d for %s: %w", page, handle, err)
		}

		fetched += len(resp.Data)
		if len(resp.Data) > 0 {
			if err := fn(resp.Data); err != nil {
				if errors.Is(err, twitter.ErrStopPaging) {
					return nil
				}
				return err
			}
		}

		if resp.Meta.NextToken == "" {
			t.logger.Debug("Timeline exhausted", "handle", handle, "pages", page, "fetched", fetched)
			return nil
		}
		token = resp.Meta.NextToken
	}

	t.logger.Warn("Stopped at page limit", "handle", handle, "max_pages", t.maxPages, "fetched", fetched)
	return nil
}

func (t *TwitterImpl) timelineQuery(window domain.Window, token string) url.Values {
	q := url.Values{}
	q.Set("max_results", strconv.Itoa(t.pageSize))
	q.Set("exclude", "retweets,replies")
	q.Set("tweet.fields", tweetFields)

	if !window.Start.IsZero() {
		q.Set("start_time", window.Start.UTC().Format(time.RFC3339))
	}
	if !window.End.IsZero() && window.End.Before(t.now().Add(-endTimeSlack)) {
		q.Set("end_time", window.End.UTC().Format(time.RFC3339))
	}
	if token != "" {
		q.Set("pagination_token", token)
	}
	return q
}
