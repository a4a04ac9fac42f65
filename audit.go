package authkit

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// AuditEvent is a single security-relevant occurrence: a token was
// issued, verified, refreshed, revoked or swept, or one of those
// failed.
type AuditEvent struct {
	EventType string            `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	Success   bool              `json:"success"`
	UserID    UserID            `json:"user_id,omitempty"`
	TokenID   string            `json:"token_id,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	ErrorCode string            `json:"error_code,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives audit events from the dispatcher. Emit is called
// from a single goroutine; implementations do not need to be
// concurrency safe with respect to each other, only with respect to
// their own consumers.
type AuditSink interface {
	Emit(event AuditEvent)
}

// NoOpSink discards all events.
type NoOpSink struct{}

func (NoOpSink) Emit(AuditEvent) {}

// ChannelSink forwards events to a channel, dropping when the channel
// is full. Useful in tests and for bridging into an existing event
// pipeline.
type ChannelSink struct {
	C chan AuditEvent
}

// NewChannelSink creates a ChannelSink with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{C: make(chan AuditEvent, buffer)}
}

func (s *ChannelSink) Emit(event AuditEvent) {
	select {
	case s.C <- event:
	default:
	}
}

// JSONWriterSink writes one JSON object per line to an io.Writer.
type JSONWriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewJSONWriterSink creates a sink writing newline-delimited JSON to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{w: w}
}

func (s *JSONWriterSink) Emit(event AuditEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	data = append(data, '\n')
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Write(data)
}
