package webhook

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryLogNewestFirst(t *testing.T) {
	l := NewDeliveryLog()

	l.Append("first", StatusSuccess, nil)
	l.Append("second", StatusError, map[string]interface{}{"code": 500})

	entries := l.List()
	assert.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].RefID)
	assert.Equal(t, StatusError, entries[0].Status)
	assert.Equal(t, "first", entries[1].RefID)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestDeliveryLogCap(t *testing.T) {
	l := NewDeliveryLog()

	for i := 0; i < maxLogEntries+10; i++ {
		l.Append(fmt.Sprintf("ref-%d", i), StatusSuccess, nil)
	}

	entries := l.List()
	assert.Len(t, entries, maxLogEntries)
	// The newest entry survives, the oldest ten were dropped.
	assert.Equal(t, fmt.Sprintf("ref-%d", maxLogEntries+9), entries[0].RefID)
	assert.Equal(t, "ref-10", entries[len(entries)-1].RefID)
}

func TestDeliveryLogClear(t *testing.T) {
	l := NewDeliveryLog()
	l.Append("ref", StatusWarning, nil)
	l.Clear()
	assert.Empty(t, l.List())
}

func TestDeliveryLogListReturnsCopy(t *testing.T) {
	l := NewDeliveryLog()
	l.Append("ref", StatusSuccess, nil)

	entries := l.List()
	entries[0].RefID = "mutated"

	assert.Equal(t, "ref", l.List()[0].RefID)
}
