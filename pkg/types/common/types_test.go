package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_MarshalJSON(t *testing.T) {
	ts := Timestamp(time.Date(2024, 3, 1, 12, 30, 0, 500, time.UTC))
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T12:30:00.0000005Z"`, string(data))
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-01T12:30:00+02:00"`), &ts))
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), time.Time(ts))

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`42`), &ts))
}

func TestTimestamp_ToUnixMilli(t *testing.T) {
	ts := Timestamp(time.UnixMilli(1700000000123))
	assert.Equal(t, int64(1700000000123), ts.ToUnixMilli())
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse([]int{1, 2}, "req-1")
	assert.True(t, resp.Success)
	assert.Equal(t, []int{1, 2}, resp.Data)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.False(t, time.Time(resp.Timestamp).IsZero())
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("CFG_001", "bad n_jobs", "req-2", map[string]interface{}{"params": []string{"n_jobs"}})

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var back map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, false, back["success"])
	assert.NotContains(t, back, "data")
	errBody := back["error"].(map[string]interface{})
	assert.Equal(t, "CFG_001", errBody["code"])
	assert.Equal(t, "bad n_jobs", errBody["message"])
	assert.Equal(t, []interface{}{"n_jobs"}, errBody["details"].(map[string]interface{})["params"])
}
