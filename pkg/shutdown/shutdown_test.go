package shutdown

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_ReverseOrderOnce(t *testing.T) {
	m := NewManager()
	var order []string
	m.OnShutdown("first", func(context.Context) error { order = append(order, "first"); return nil })
	m.OnShutdown("second", func(context.Context) error { order = append(order, "second"); return nil })

	assert.NoError(t, m.Shutdown(context.Background()))
	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestManager_ReturnsFirstError(t *testing.T) {
	m := NewManager()
	boom := errors.New("boom")
	ran := false
	m.OnShutdown("ok", func(context.Context) error { ran = true; return nil })
	m.OnShutdown("bad", func(context.Context) error { return boom })

	assert.ErrorIs(t, m.Shutdown(context.Background()), boom)
	assert.True(t, ran)
}

func TestManager_CancelledContextSkips(t *testing.T) {
	m := NewManager()
	ran := false
	m.OnShutdown("never", func(context.Context) error { ran = true; return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Shutdown(ctx), context.Canceled)
	assert.False(t, ran)
}
