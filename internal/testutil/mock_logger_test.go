package testutil_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molprint/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)
	v, ok := messages[0].Field("key")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_Children(t *testing.T) {
	root := testutil.NewMockLogger()
	child := root.Named("transform").Named("worker").With(logging.Int("chunk", 3))

	child.Warn("slow chunk", logging.Int("chunk", 4))

	got, ok := root.Find("warn", "slow chunk")
	require.True(t, ok, "children share the parent's store")
	assert.Equal(t, "transform.worker", got.Logger)
	v, _ := got.Field("chunk")
	assert.Equal(t, 4, v, "call fields override inherited ones")

	root.Info("root entry")
	_, ok = root.Find("info", "root entry")
	assert.True(t, ok)
	assert.Empty(t, root.GetMessages()[1].Fields, "parent fields are unaffected by With")
}

func TestMockLogger_Concurrent(t *testing.T) {
	logger := testutil.NewMockLogger()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Named("w").Debug("tick")
		}()
	}
	wg.Wait()
	assert.Len(t, logger.GetMessages(), 8)
}
