package dto

type SubmitRequest struct {
	SubmitterID int64  `json:"submitter_id"`
	Content     string `json:"content"`
	Categories  string `json:"categories,omitempty"`
}

type SubmitResponse struct {
	Outcome       string `json:"outcome"`
	PendingID     string `json:"pending_id,omitempty"`
	RetryAfterSec int64  `json:"retry_after_sec,omitempty"`
	Delivered     bool   `json:"delivered,omitempty"`
}

type PendingConfessionResponse struct {
	ID             string   `json:"id"`
	AuthorTag      string   `json:"author_tag"`
	ContentPreview string   `json:"content_preview"`
	Categories     string   `json:"categories,omitempty"`
	FlaggedTerms   []string `json:"flagged_terms"`
	CreatedAt      int64    `json:"created_at"`
}

type PendingListResponse struct {
	Pending []PendingConfessionResponse `json:"pending"`
}

type ResolveResponse struct {
	Outcome   string `json:"outcome"`
	Delivered bool   `json:"delivered,omitempty"`
}
