package ws

import (
	"encoding/json"
	"time"

	"tixgate/internal/domain/ticket"
)

// Frame type values exchanged with scanner devices.
const (
	// scanner -> server
	FrameScan = "scan"
	FramePing = "ping"

	// server -> scanner
	FrameHello    = "hello"
	FrameAccepted = "accepted"
	FrameRejected = "rejected"
	FrameSuspend  = "suspend"
	FrameResume   = "resume"
	FrameResult   = "result"
	FramePong     = "pong"
)

// Frame is the envelope for every message on the scanner feed. Fields
// beyond Type are populated per frame type.
type Frame struct {
	Type    string `json:"type"`
	Payload string `json:"payload,omitempty"`

	ScannerID string `json:"scannerId,omitempty"`
	State     string `json:"state,omitempty"`

	Success *bool          `json:"success,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Ticket  *ticket.Record `json:"ticket,omitempty"`

	At time.Time `json:"at,omitempty"`
}

func encodeFrame(f Frame) []byte {
	data, err := json.Marshal(f)
	if err != nil {
		return []byte(`{"type":"error"}`)
	}
	return data
}

func decodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, err
	}
	return f, nil
}
