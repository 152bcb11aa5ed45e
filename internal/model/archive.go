package model

import "time"

// BlueprintArchive is an append-only audit row written for every recorded
// blueprint. Rows outlive eviction from the history index.
type BlueprintArchive struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	EventID        string    `gorm:"size:36;not null;uniqueIndex" json:"event_id"`
	BlueprintID    string    `gorm:"size:16;not null;index" json:"blueprint_id"`
	Title          string    `gorm:"size:256;not null" json:"title"`
	OriginalPrompt string    `gorm:"type:text;not null" json:"original_prompt"`
	BlueprintAt    int64     `gorm:"not null" json:"blueprint_at"`
	CreatedAt      time.Time `json:"created_at"`
}

func (BlueprintArchive) TableName() string { return "blueprint_archive" }

// RecordedEvent is published on the broker after a blueprint is recorded.
type RecordedEvent struct {
	EventID string       `json:"event_id"`
	Entry   HistoryEntry `json:"entry"`
}
