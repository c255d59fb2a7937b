package Models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RequestLog is one API request captured by the logging middleware.
// The request body is kept as JSON for mutating endpoints so disputed
// ledger writes can be traced back to their input.
type RequestLog struct {
	gorm.Model
	Timestamp time.Time      `json:"timestamp" gorm:"index"`
	Method    string         `json:"method"`
	Path      string         `json:"path" gorm:"index"`
	Status    int            `json:"status"`
	LatencyMs int64          `json:"latency_ms"`
	IP        string         `json:"ip"`
	UserID    uint           `json:"user_id"`
	Body      datatypes.JSON `json:"body,omitempty"`
}
