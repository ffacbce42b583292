package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubService struct {
	name     string
	startErr error
	block    bool
	stopped  atomic.Bool
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *stubService) Stop(context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllServicesOnFailure(t *testing.T) {
	failing := &stubService{name: "http", startErr: errors.New("bind failed")}
	blocking := &stubService{name: "worker", block: true}
	runner := NewRunner(failing, blocking)
	var cleaned atomic.Bool
	runner.OnShutdown(func() { cleaned.Store(true) })

	err := runner.Run(context.Background(), time.Second, zap.NewNop().Sugar())
	if err == nil || err.Error() != "bind failed" {
		t.Fatalf("expected start error, got %v", err)
	}
	if !failing.stopped.Load() || !blocking.stopped.Load() {
		t.Fatalf("expected every service to be stopped")
	}
	if !cleaned.Load() {
		t.Fatalf("expected shutdown hook to run")
	}
}

func TestRunnerCanceledContextIsCleanExit(t *testing.T) {
	blocking := &stubService{name: "http", block: true}
	runner := NewRunner(blocking)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("canceled context should exit cleanly, got %v", err)
	}
	if !blocking.stopped.Load() {
		t.Fatalf("expected service to be stopped")
	}
}

func TestBuildRunnerRejectsUnknownMode(t *testing.T) {
	if _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if IsValidMode("scheduler") {
		t.Fatalf("unexpected valid mode")
	}
	for _, mode := range []string{ModeAll, ModeAPI, ModeWorker} {
		if !IsValidMode(mode) {
			t.Fatalf("mode %s should be valid", mode)
		}
	}
}
