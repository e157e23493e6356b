package dto

type CooldownResponse struct {
	Seconds int64 `json:"seconds"`
}

type CooldownRequest struct {
	Seconds int64 `json:"seconds"`
}

type DestinationResponse struct {
	ChatID  int64 `json:"chat_id"`
	TopicID int64 `json:"topic_id,omitempty"`
	Set     bool  `json:"set"`
}

type DestinationRequest struct {
	ChatID  int64 `json:"chat_id"`
	TopicID int64 `json:"topic_id,omitempty"`
}

type BlacklistResponse struct {
	Terms []string `json:"terms"`
}

type TermRequest struct {
	Term string `json:"term"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}

type ButtonStatsEntry struct {
	SubmitterID int64  `json:"submitter_id"`
	Count       uint64 `json:"count"`
}

type ButtonStatsResponse struct {
	Top        []ButtonStatsEntry `json:"top"`
	Submitters int                `json:"submitters"`
	Presses    uint64             `json:"presses"`
}
