package twitter

// RawTweet is a post as returned by the X API v2 with the requested tweet.fields.
type RawTweet struct {
	ID               string            `json:"id"`
	Text             string            `json:"text"`
	AuthorID         string            `json:"author_id,omitempty"`
	ConversationID   string            `json:"conversation_id,omitempty"`
	CreatedAt        string            `json:"created_at,omitempty"`
	InReplyToUserID  string            `json:"in_reply_to_user_id,omitempty"`
	ReferencedTweets []ReferencedTweet `json:"referenced_tweets,omitempty"`
	PublicMetrics    *PublicMetrics    `json:"public_metrics,omitempty"`
}

const (
	RefRetweeted = "retweeted"
	RefQuoted    = "quoted"
	RefRepliedTo = "replied_to"
)

type ReferencedTweet struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type PublicMetrics struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`
}

// References reports whether the tweet references another with the given type.
func (t RawTweet) References(refType string) bool {
	for _, r := range t.ReferencedTweets {
		if r.Type == refType {
			return true
		}
	}
	return false
}

// User is the subset of the users lookup response we need.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type APIError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}

// UserResponse wraps the users lookup payload.
type UserResponse struct {
	Data   *User      `json:"data"`
	Errors []APIError `json:"errors"`
}

type TimelineMeta struct {
	ResultCount int    `json:"result_count"`
	NewestID    string `json:"newest_id"`
	OldestID    string `json:"oldest_id"`
	NextToken   string `json:"next_token"`
}

// TimelineResponse is one page of GET /2/users/{id}/tweets.
type TimelineResponse struct {
	Data []RawTweet   `json:"data"`
	Meta TimelineMeta `json:"meta"`
}
