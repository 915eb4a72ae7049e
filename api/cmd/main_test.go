package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/rs/zerolog"
)

type fakeServer struct {
	listenErr   error
	shutdownErr error

	shutdown bool
	closed   bool
}

func (f *fakeServer) ListenAndServe() error { return f.listenErr }
func (f *fakeServer) Shutdown(ctx context.Context) error {
	f.shutdown = true
	return f.shutdownErr
}
func (f *fakeServer) Close() error {
	f.closed = true
	return nil
}
func (f *fakeServer) Addr() string { return ":0" }

func buildWith(fs *fakeServer, cleanupCalled *bool) serverBuilder {
	return func() (httpServer, func(), error) {
		return fs, func() { *cleanupCalled = true }, nil
	}
}

func TestRun_BootstrapFailure(t *testing.T) {
	build := func() (httpServer, func(), error) {
		return nil, nil, errors.New("boom")
	}
	if got := Run(build, make(chan os.Signal, 1), zerolog.Nop()); got != 1 {
		t.Fatalf("exit code = %d, want 1", got)
	}
}

func TestRun_GracefulShutdownOnSignal(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	sigCh <- os.Interrupt // pre-send so Run takes the signal path

	fs := &fakeServer{listenErr: http.ErrServerClosed}
	var cleaned bool

	if got := Run(buildWith(fs, &cleaned), sigCh, zerolog.Nop()); got != 0 {
		t.Fatalf("exit code = %d, want 0", got)
	}
	if !fs.shutdown {
		t.Fatal("Shutdown not called")
	}
	if fs.closed {
		t.Fatal("Close called on graceful path")
	}
	if !cleaned {
		t.Fatal("cleanup not called")
	}
}

func TestRun_ServerCrash(t *testing.T) {
	fs := &fakeServer{listenErr: errors.New("listen tcp: address in use")}
	var cleaned bool

	if got := Run(buildWith(fs, &cleaned), make(chan os.Signal, 1), zerolog.Nop()); got != 1 {
		t.Fatalf("exit code = %d, want 1", got)
	}
	if fs.shutdown {
		t.Fatal("Shutdown called on crash path")
	}
	if !cleaned {
		t.Fatal("cleanup not called")
	}
}

func TestRun_ShutdownFailureForcesClose(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	sigCh <- os.Interrupt

	fs := &fakeServer{
		listenErr:   http.ErrServerClosed,
		shutdownErr: errors.New("connections still draining"),
	}
	var cleaned bool

	if got := Run(buildWith(fs, &cleaned), sigCh, zerolog.Nop()); got != 0 {
		t.Fatalf("exit code = %d, want 0", got)
	}
	if !fs.closed {
		t.Fatal("Close not called after failed Shutdown")
	}
}
