package webhook

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	StatusSuccess DeliveryStatus = "success"
	StatusError   DeliveryStatus = "error"
	StatusWarning DeliveryStatus = "warning"
)

// maxLogEntries bounds the in-memory delivery log.
const maxLogEntries = 50

type LogEntry struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	RefID     string                 `json:"ref_id"`
	Status    DeliveryStatus         `json:"status"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// DeliveryLog keeps the most recent webhook delivery attempts, newest first.
// Older entries are discarded once the cap is reached.
type DeliveryLog struct {
	mu      sync.RWMutex
	entries []LogEntry
}

func NewDeliveryLog() *DeliveryLog {
	return &DeliveryLog{entries: make([]LogEntry, 0, maxLogEntries)}
}

func (l *DeliveryLog) Append(refID string, status DeliveryStatus, details map[string]interface{}) {
	entry := LogEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		RefID:     refID,
		Status:    status,
		Details:   details,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]LogEntry{entry}, l.entries...)
	if len(l.entries) > maxLogEntries {
		l.entries = l.entries[:maxLogEntries]
	}
}

// List returns a copy of the log, newest first.
func (l *DeliveryLog) List() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *DeliveryLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}
