// Package debugsrv serves a read-only HTTP view of a running kernel: the
// process table and the console table.
package debugsrv

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"phosphor/internal/buildinfo"
	"phosphor/internal/logging"
	"phosphor/vos/kernel"
)

const (
	callTimeout     = 2 * time.Second
	shutdownTimeout = 5 * time.Second
	requestIDHeader = "X-Request-ID"
)

type Server struct {
	k      *kernel.Kernel
	log    *slog.Logger
	engine *gin.Engine
}

func New(k *kernel.Kernel, log *slog.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		k:      k,
		log:    log.With(slog.String("component", "debugsrv")),
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/ps", s.handlePS)
	s.engine.GET("/consoles", s.handleConsoles)
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("debug server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	}
}

// requestLogger tags each request with an id and puts a logger carrying it into
// the request context.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		log := s.log.With(slog.String("request_id", id))
		ctx := logging.MakeContextWithLogger(c.Request.Context(), log)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()
		log.Debug("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("took", time.Since(start)),
		)
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(c *gin.Context) {
	writeJSON(c, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Short()})
}

func (s *Server) handlePS(c *gin.Context) {
	var procs []kernel.ProcessInfo
	if !s.onDispatcher(c, "debugsrv.handlePS", func() { procs = s.k.Processes() }) {
		return
	}
	writeJSON(c, http.StatusOK, procs)
}

func (s *Server) handleConsoles(c *gin.Context) {
	var consoles []kernel.ConsoleInfo
	if !s.onDispatcher(c, "debugsrv.handleConsoles", func() { consoles = s.k.Consoles() }) {
		return
	}
	writeJSON(c, http.StatusOK, consoles)
}

type errorResponse struct {
	Error string `json:"error"`
}

// onDispatcher runs fn on the kernel dispatcher. On timeout it answers 503 and
// reports false.
func (s *Server) onDispatcher(c *gin.Context, op string, fn func()) bool {
	ctx, cancel := context.WithTimeout(c.Request.Context(), callTimeout)
	defer cancel()
	if err := s.k.Call(ctx, fn); err != nil {
		logging.GetLoggerFromContextWithOp(c.Request.Context(), op).Warn("kernel busy", logging.Err(err))
		writeJSON(c, http.StatusServiceUnavailable, errorResponse{Error: "kernel did not respond"})
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(status, "application/json; charset=utf-8", b)
}
