package serve_test

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"vidscript/internal/serve"
	"vidscript/internal/testsupport"
)

func TestServeStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteText(t, filepath.Join(dir, "index.html"), "hello")
	recorder, logger := testsupport.NewLogRecorder()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve.Server{Dir: dir, Logger: logger}.Serve(ctx, listener)
	}()

	url := "http://" + listener.Addr().String() + "/"
	var resp *http.Response
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err = http.Get(url)
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
	if len(recorder.Find("serving")) != 1 || len(recorder.Find("request")) != 1 {
		t.Fatalf("unexpected log entries %+v", recorder.Entries())
	}
}

func TestServeMissingDirectory(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	err = serve.Server{Dir: filepath.Join(t.TempDir(), "missing")}.Serve(context.Background(), listener)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestRunRejectsBadAddress(t *testing.T) {
	err := serve.Server{Dir: t.TempDir(), Addr: "not-an-address"}.Run(context.Background())
	if err == nil {
		t.Fatal("expected listen error")
	}
}
