package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type blockingService struct {
	started atomic.Bool
	stopped chan struct{}
	once    sync.Once
	order   *[]string
	mu      *sync.Mutex
	name    string
}

func newBlocking(name string, order *[]string, mu *sync.Mutex) *blockingService {
	return &blockingService{stopped: make(chan struct{}), order: order, mu: mu, name: name}
}

func (b *blockingService) Start() error {
	b.started.Store(true)
	<-b.stopped
	return nil
}

func (b *blockingService) Stop() {
	b.once.Do(func() {
		b.mu.Lock()
		*b.order = append(*b.order, b.name)
		b.mu.Unlock()
		close(b.stopped)
	})
}

func TestLifecycleStopsInReverseOrder(t *testing.T) {
	var (
		order []string
		mu    sync.Mutex
	)
	svc1 := newBlocking("svc1", &order, &mu)
	svc2 := newBlocking("svc2", &order, &mu)

	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	require.Eventually(t, func() bool {
		return svc1.started.Load() && svc2.started.Load()
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down")
	}
	assert.Equal(t, []string{"svc2", "svc1"}, order)
}

func TestLifecycleReturnsServiceFailure(t *testing.T) {
	var (
		order []string
		mu    sync.Mutex
	)
	healthy := newBlocking("healthy", &order, &mu)
	boom := errors.New("bind failed")

	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.Add("healthy", healthy)
	lc.Add("broken", &FuncService{StartFn: func() error { return boom }, StopFn: func() {}})

	err := lc.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service broken")
	assert.Equal(t, []string{"healthy"}, order)
}

func TestHTTPServiceStopsCleanly(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	svc := HTTPService(srv, time.Second, zaptest.NewLogger(t))

	done := make(chan error, 1)
	go func() { done <- svc.Start() }()
	time.Sleep(20 * time.Millisecond)
	svc.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("http service did not stop")
	}
}

func TestFuncService(t *testing.T) {
	var started, stopped bool
	svc := &FuncService{
		StartFn: func() error { started = true; return nil },
		StopFn:  func() { stopped = true },
	}
	assert.NoError(t, svc.Start())
	svc.Stop()
	assert.True(t, started)
	assert.True(t, stopped)
}
