package models

import "time"

// Record is a single key/value row backing the persisted store.
type Record struct {
	Key       string `gorm:"column:record_key;primaryKey;type:varchar(255)"`
	Value     []byte
	UpdatedAt time.Time
}
