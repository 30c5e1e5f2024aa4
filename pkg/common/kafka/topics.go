package kafka

// Topics and event types used by the audit platform.
const (
	TopicSubmissionFinalized = "npda.submission.finalized"
	TopicKPIsCalculated      = "npda.kpis.calculated"

	EventSubmissionFinalized = "submission.finalized"
	EventKPIsCalculated      = "kpis.calculated"
)
