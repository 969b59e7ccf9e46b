package twitterimpl

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/w3wave/social-digest/internal/twitter"
)

const userIDCachePrefix = "twitter:user_id:"

// ResolveUserID maps a handle to the platform user id, consulting the cache first.
func (t *TwitterImpl) ResolveUserID(ctx context.Context, handle string) (string, error) {
	handle = cleanHandle(handle)
	if handle == "" {
		return "", fmt.Errorf("empty handle: %w", twitter.ErrAccountNotFound)
	}
	key := userIDCachePrefix + strings.ToLower(handle)

	if t.cache != nil {
		id, ok, err := t.cache.Get(ctx, key)
		if err != nil {
			t.logger.Warn("User id cache read failed", "handle", handle, "error", err)
		} else if ok {
			return id, nil
		}
	}

	var resp twitter.UserResponse
	op := func() error {
		resp = twitter.UserResponse{}
		return t.get(ctx, endpointUserLookup, "/2/users/by/username/"+url.PathEscape(handle), nil, &resp)
	}
	if err := t.policy.Do(ctx, t.logger, "ResolveUserID", op); err != nil {
		return "", fmt.Errorf("resolve user id for %s: %w", handle, err)
	}

	if resp.Data == nil || resp.Data.ID == "" {
		detail := ""
		if len(resp.Errors) > 0 {
			detail = resp.Errors[0].Detail
		}
		return "", fmt.Errorf("resolve user id for %s: %w %s", handle, twitter.ErrAccountNotFound, detail)
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, key, resp.Data.ID, t.userIDTTL); err != nil {
			t.logger.Warn("User id cache write failed", "handle", handle, "error", err)
		}
	}

	t.logger.Debug("Resolved user id", "handle", handle, "user_id", resp.Data.ID)
	return resp.Data.ID, nil
}
