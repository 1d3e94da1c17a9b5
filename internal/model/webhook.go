package model

import "time"

// WebhookEvent records processed provider events so redelivered webhooks are
// dropped instead of re-applied.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
