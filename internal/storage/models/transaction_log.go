package models

import (
	"time"
)

// LogAction is the kind of state change recorded in the audit log.
type LogAction string

const (
	LogActionOccupy LogAction = "OCCUPY"
	LogActionFree   LogAction = "FREE"
)

// TransactionLog is an append-only audit entry for an occupy or free.
type TransactionLog struct {
	ID        int64     `json:"id"`
	Action    LogAction `json:"action"`
	SpotID    string    `json:"spot_id"`
	Plate     string    `json:"plate,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TimestampMillis returns the entry time as epoch milliseconds.
func (l *TransactionLog) TimestampMillis() int64 {
	return l.Timestamp.UnixMilli()
}
