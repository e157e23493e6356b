package model

import "time"

// PendingConfession is a flagged submission parked for human review.
// Entries are immutable once enqueued; resolution removes them.
type PendingConfession struct {
	ID           string   `json:"id"`
	CommunityID  int64    `json:"community_id"`
	AuthorTag    string   `json:"author_tag"`
	Content      string   `json:"content"`
	Categories   string   `json:"categories,omitempty"`
	FlaggedTerms []string `json:"flagged_terms"`
	CreatedAt    int64    `json:"created_at"`
}

// Destination identifies where published confessions land for a community.
type Destination struct {
	ChatID  int64 `json:"chat_id"`
	TopicID int64 `json:"topic_id,omitempty"`
}

// RenderedConfession is the publishable form of an accepted submission.
type RenderedConfession struct {
	Title       string
	Body        string
	Categories  string
	ThreadTitle string
}

const confessionTitle = "Anonymous Confession"

// Render builds the publishable content for a confession submitted at the
// given time. The thread title carries the submission timestamp in UTC.
func Render(content, categories string, submittedAt int64) RenderedConfession {
	at := time.Unix(submittedAt, 0).UTC()
	return RenderedConfession{
		Title:       confessionTitle,
		Body:        content,
		Categories:  categories,
		ThreadTitle: "Confession - " + at.Format("2006-01-02 15:04:05 UTC"),
	}
}
