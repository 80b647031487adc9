package common

import (
	"time"

	"github.com/google/uuid"
)

type Meta struct {
	// Trace / request correlation ID
	CorrelationID string `json:"correlation_id,omitempty"`
	// Unique event ID, the dedup key on the consumer side
	ID string `json:"id"`
	// Emitting service and version
	Producer string `json:"producer,omitempty"`
	// Timestamp when the event was emitted
	Time time.Time `json:"time"`
	// Event name and version, e.g. roles.deleted.v1
	Type string `json:"type"`
}

// NewMeta returns metadata with a random ID, stamped now in UTC.
func NewMeta(eventType, producer string) Meta {
	id := uuid.NewString()
	return Meta{
		ID:            id,
		CorrelationID: id,
		Producer:      producer,
		Time:          time.Now().UTC(),
		Type:          eventType,
	}
}
