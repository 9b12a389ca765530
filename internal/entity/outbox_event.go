package entity

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is one media notification waiting in the media_events table
// until the relay worker publishes it to Kafka.
type OutboxEvent struct {
	ID          uuid.UUID  `json:"id"`
	AggregateID uuid.UUID  `json:"aggregate_id"`
	Payload     []byte     `json:"payload"`
	Status      Status     `json:"status"` // pending, processing, processed, failed
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	RetryCount  int        `json:"retry_count"`
}
