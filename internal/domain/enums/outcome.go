package enums

type Outcome string

const (
	OutcomePublished Outcome = "published"
	OutcomePending   Outcome = "pending"
	OutcomeBlocked   Outcome = "blocked"
	OutcomeDiscarded Outcome = "discarded"
)
