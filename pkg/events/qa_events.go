package events

import "time"

const (
	QACompletedEventType = "QA_COMPLETED"
	QABlockedEventType   = "QA_BLOCKED"
)

// NewQACompletedEvent marks the end of one answered question-answering
// run. Consumed by the audit trail and fan-out to NATS.
func NewQACompletedEvent(payload map[string]interface{}) Event {
	return BaseEvent{
		Type:       QACompletedEventType,
		Data:       payload,
		OccurredAt: time.Now(),
	}
}

// NewQABlockedEvent marks a run that ended in a business block (PII,
// scope, insufficient sources or failed validation).
func NewQABlockedEvent(payload map[string]interface{}) Event {
	return BaseEvent{
		Type:       QABlockedEventType,
		Data:       payload,
		OccurredAt: time.Now(),
	}
}
