package audit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_WritesNewlineDelimitedJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, Config{Enabled: true})

	require.NoError(t, logger.LogTaint("aid-1", "alice", "oid-1", true, ""))
	require.NoError(t, logger.LogDelete("aid-1", "alice", "oid-2", true, ""))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, EventTaint, first.Type)
	assert.Equal(t, "oid-1", first.Resource)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.Timestamp.IsZero())
}

func TestLog_DisabledLoggerIsNoop(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, Config{Enabled: false})
	require.NoError(t, logger.LogTaint("aid-1", "alice", "oid-1", true, ""))
	assert.Empty(t, buf.String())
}

func TestLog_ClosedLoggerErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, Config{Enabled: true})
	require.NoError(t, logger.Close())
	err := logger.Log(Event{Type: EventDelete})
	assert.Error(t, err)
}

func TestLogAccessDenied_TriggersAlertCallback(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, Config{Enabled: true})

	var alerted Event
	logger.SetAlertCallback(func(e Event) { alerted = e })

	require.NoError(t, logger.LogAccessDenied("aid-2", "bob", "secret-oid"))
	assert.Equal(t, EventAccessDenied, alerted.Type)
	assert.Equal(t, "secret-oid", alerted.Resource)
}

func TestLogRemoveTaints_RecordsCount(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, Config{Enabled: true})
	require.NoError(t, logger.LogRemoveTaints("aid-1", "alice", "oid-1", 3, true, ""))

	var e Event
	require.NoError(t, json.Unmarshal(buf.Bytes(), &e))
	assert.Equal(t, "3", e.Metadata["removed"])
}
