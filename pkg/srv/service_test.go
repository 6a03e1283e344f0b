package srv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShutdownServices_ReverseOrder(t *testing.T) {
	var order []string
	services := []Service{
		NewCleanup(func() error { order = append(order, "db"); return nil }),
		NewFunc(nil, func(context.Context) error { order = append(order, "bot"); return nil }),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ShutdownServices(ctx, services)

	assert.Equal(t, []string{"bot", "db"}, order)
}

func TestStartServices_RunsStart(t *testing.T) {
	started := make(chan struct{})
	svc := NewFunc(func(context.Context) error {
		close(started)
		return nil
	}, nil)

	StartServices(context.Background(), []Service{svc})

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("service was not started")
	}
}

func TestNewCleanup_NilFunc(t *testing.T) {
	svc := NewCleanup(nil)
	assert.NoError(t, svc.Start(context.Background()))
	assert.NoError(t, svc.Shutdown(context.Background()))
}

func TestStopServices_DoesNotWait(t *testing.T) {
	stopped := false
	svc := NewCleanup(func() error { stopped = true; return nil })

	StopServices(context.Background(), []Service{svc})

	assert.True(t, stopped)
}
