package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"vidscript/internal/logging"
)

// DefaultAddr is the listen address used when Server.Addr is empty.
const DefaultAddr = "127.0.0.1:8000"

const shutdownTimeout = 5 * time.Second

// Server serves Dir over HTTP until its context is canceled.
type Server struct {
	Dir    string
	Addr   string
	Logger *slog.Logger
}

// Run listens on Addr and serves until ctx is canceled, then shuts down
// gracefully. A canceled context is a normal stop and returns nil.
func (s Server) Run(ctx context.Context) error {
	addr := s.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("serve listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on an existing listener until ctx is canceled. The listener
// is closed on return.
func (s Server) Serve(ctx context.Context, listener net.Listener) error {
	logger := s.logger()
	handler, err := NewHandler(s.Dir, s.Logger)
	if err != nil {
		_ = listener.Close()
		return fmt.Errorf("serve %s: %w", s.Dir, err)
	}
	defer handler.Close()

	server := &http.Server{
		Handler:           AccessLog(handler, logger),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()
	logger.Info("serving",
		logging.String("dir", handler.Dir()),
		logging.String("url", "http://"+listener.Addr().String()+"/"),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Debug("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		_ = server.Close()
		return fmt.Errorf("serve shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (s Server) logger() *slog.Logger {
	if s.Logger == nil {
		return logging.NewComponentLogger(logging.NewNop(), "serve")
	}
	return logging.NewComponentLogger(s.Logger, "serve")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += int64(n)
	return n, err
}

// AccessLog logs one line per request. Client errors log at WARN and server
// errors at ERROR so console coloring follows the status.
func AccessLog(next http.Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		level := slog.LevelInfo
		switch {
		case rec.status >= 500:
			level = slog.LevelError
		case rec.status >= 400:
			level = slog.LevelWarn
		}
		attrs := []slog.Attr{
			logging.String("remote", r.RemoteAddr),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", rec.status),
			logging.Int64("bytes", rec.bytes),
			logging.Duration("elapsed", time.Since(started)),
		}
		if rng := r.Header.Get("Range"); rng != "" {
			attrs = append(attrs, logging.String("range", rng))
		}
		logger.LogAttrs(r.Context(), level, "request", attrs...)
	})
}
