package domain

import "time"

// Report is one persisted digest attempt.
type Report struct {
	ID        int64
	Date      string   // Digest day, YYYY-MM-DD
	Summary   string   // LLM output
	PostIDs   []string // External ids of the posts the digest covered
	EmailSent bool
	CreatedAt time.Time
}

// Email is a rendered digest ready for dispatch.
type Email struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}
