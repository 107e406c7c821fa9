// Package scrstore persists last-confirmed scrambling keys per channel, so
// a PhysicalChannel can seed WithInitialSCR instead of re-running blind
// detection from cold start every time the process restarts.
package scrstore

import "time"

// ScrRecord is the last confirmed SCR for one physical channel.
type ScrRecord struct {
	ChannelID  string    `gorm:"primarykey;size:64" json:"channel_id"`
	SCR        int       `gorm:"not null" json:"scr"`
	Confidence int       `gorm:"not null" json:"confidence"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for ScrRecord.
func (ScrRecord) TableName() string {
	return "scr_records"
}
