package model

import "time"

// Setting is a durable key/value pair owned by the console process.
// The admin session token lives here under a fixed key.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:128"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
