package domain

import "time"

// Post is the canonical stored record of one original post.
type Post struct {
	ID           int64     // Store surrogate key
	ExternalID   string    // Platform post id, the natural key
	AuthorHandle string    // Account handle without '@'
	Content      string    // Raw text body
	CreatedAt    time.Time // When the post was authored
	SourceURL    string    // Canonical link to the post
	Metrics      Metrics   // Engagement observed at ingestion time
	Processed    bool      // Included in a delivered digest
	IngestedAt   time.Time // When the gate first stored the post
}

// Metrics holds interaction counts. Missing counts are zero.
type Metrics struct {
	Likes    int
	Reshares int
	Replies  int
	Quotes   int
}

// Engagement weights.
const (
	LikeWeight    = 1
	ReshareWeight = 2
	ReplyWeight   = 3
	QuoteWeight   = 2
)

// Score is likes + 2*reshares + 3*replies + 2*quotes.
func (m Metrics) Score() int {
	return m.Likes*LikeWeight +
		m.Reshares*ReshareWeight +
		m.Replies*ReplyWeight +
		m.Quotes*QuoteWeight
}

// Score is the post's engagement score.
func (p Post) Score() int {
	return p.Metrics.Score()
}

// ExternalIDs returns the natural keys of posts in order.
func ExternalIDs(posts []Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ExternalID)
	}
	return ids
}
