package events

import (
	"encoding/json"
	"time"
)

// Event types published while a pipeline run progresses.
const (
	TypeRunState   = "run_state"   // state machine transitions
	TypeSourceDone = "source_done" // one (provider, company) pair finished
	TypeRunSummary = "run_summary" // final stats for the run
	TypePing       = "ping"
)

type Event struct {
	Type    string          `json:"type"`
	Version int             `json:"v"`
	At      time.Time       `json:"at"`
	RunID   string          `json:"run_id,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// MakeEvent builds the wire form of one event.
func MakeEvent(runID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:    typ,
		Version: v,
		At:      time.Now().UTC(),
		RunID:   runID,
		Data:    raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
