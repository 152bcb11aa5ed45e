package model

import "time"

// KVEntry backs the key-value capability with a MySQL table.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     []byte    `gorm:"type:longblob;not null" json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (KVEntry) TableName() string { return "kv_entries" }
