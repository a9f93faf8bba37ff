package eventbus

import (
	"time"

	"tixgate/internal/domain/ticket"
)

// Topics published by the scan session and the session manager.
const (
	// Scan lifecycle
	EventScanAccepted = "scan:accepted"
	EventScanResult   = "scan:result"
	EventScanRejected = "scan:rejected"
	EventScanReady    = "scan:ready"

	// Session lifecycle
	EventSessionLogin  = "session:login"
	EventSessionLogout = "session:logout"
)

// ScanAcceptedData announces that a scan entered verification.
type ScanAcceptedData struct {
	ScannerID string    `json:"scannerId,omitempty"`
	At        time.Time `json:"at"`
}

// ScanResultData carries the terminal outcome of one scan attempt.
type ScanResultData struct {
	ScannerID string         `json:"scannerId,omitempty"`
	Success   bool           `json:"success"`
	Reason    string         `json:"reason,omitempty"`
	Ticket    *ticket.Record `json:"ticket,omitempty"`
	At        time.Time      `json:"at"`
}

// ScanReadyData signals the machine returned to idle and accepts scans again.
type ScanReadyData struct {
	At time.Time `json:"at"`
}

// ScanRejectedData reports a scan dropped while the machine was busy.
type ScanRejectedData struct {
	ScannerID string    `json:"scannerId,omitempty"`
	State     string    `json:"state"`
	At        time.Time `json:"at"`
}

// SessionEventData marks a login or logout.
type SessionEventData struct {
	UserName string    `json:"userName,omitempty"`
	Role     string    `json:"role,omitempty"`
	At       time.Time `json:"at"`
}
