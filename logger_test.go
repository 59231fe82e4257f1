package tinyx

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var r map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &r))
		records = append(records, r)
	}
	return records
}

func TestLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	store := New(From(map[string]any{"todos": []any{}}), Logger(l))

	_, err := store.Commit(addTodo, "x")
	require.NoError(t, err)
	_, err = store.Commit(identity, nil)
	require.NoError(t, err)
	_, err = store.Commit(setFoo, 1, "todos")
	require.Error(t, err)

	records := logRecords(t, &buf)
	require.Len(t, records, 3)

	assert.Equal(t, "commit", records[0]["msg"])
	assert.Equal(t, "INFO", records[0]["level"])
	assert.Equal(t, "ADD_TODO", records[0]["tx"])
	assert.Equal(t, "x", records[0]["payload"])
	assert.Equal(t, float64(1), records[0]["changes"])
	assert.Equal(t, []any{"change [todos] [] -> [map[task:x]]"}, records[0]["diffs"])

	assert.Equal(t, "DEBUG", records[1]["level"])
	assert.Equal(t, "IDENTITY", records[1]["tx"])
	assert.Equal(t, float64(0), records[1]["changes"])

	assert.Equal(t, "ERROR", records[2]["level"])
	assert.Equal(t, "todos", records[2]["path"])
	assert.Contains(t, records[2]["err"], ErrInvalidPath.Error())
}

func TestLoggerAtInfo(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))
	store := New(From(map[string]any{"todos": []any{}}), Logger(l))

	_, err := store.Commit(identity, nil)
	require.NoError(t, err)
	assert.Empty(t, logRecords(t, &buf))

	_, err = store.Commit(addTodo, "x")
	require.NoError(t, err)
	records := logRecords(t, &buf)
	require.Len(t, records, 1)
	assert.NotContains(t, records[0], "diffs")
}
