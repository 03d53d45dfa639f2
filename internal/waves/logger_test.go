package waves

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	SetLogger(nil)
	assert.False(t, logger().Enabled(context.Background(), slog.LevelError))
}

func TestSetLoggerRoutesRecords(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	p := demoParams()
	p.Workers = 2
	f := newTestField(t, p)
	assert.Contains(t, buf.String(), "wave row workers started")

	_, err := f.Update(1e6)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "wave catch-up capped")
}
