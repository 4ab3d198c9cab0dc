// This file wires the agent's HTTP-over-Unix-socket transport: gin bound to
// a net.Listener created with net.Listen("unix", ...) instead of a TCP
// port, with gin-contrib/requestid for request correlation.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	jellyvalidation "github.com/jellydator/validation"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/allisson/shrine/internal/metrics"
	"github.com/allisson/shrine/internal/shrine"
	"github.com/allisson/shrine/internal/shrine/authorship"
	"github.com/allisson/shrine/internal/shrine/crypto"
	"github.com/allisson/shrine/internal/shrine/domain"
	appvalidation "github.com/allisson/shrine/internal/validation"
)

// metricsNamespace prefixes every metric name the agent exposes.
const metricsNamespace = "shrine_agent"

// Server is the agent's HTTP-over-Unix-socket transport: a password cache,
// a gin router, and an http.Server bound to a Unix listener.
type Server struct {
	cache        *Cache
	logger       *slog.Logger
	provider     *metrics.Provider
	cacheMetrics metrics.CacheMetrics
	server       *http.Server
	listener     net.Listener
	group        singleflight.Group
	limiter      *rate.Limiter
}

// NewServer builds the agent server. socketPath is removed and recreated on
// Listen; provider may be nil to disable /metrics, in which case
// cacheMetrics should be the no-op implementation.
func NewServer(logger *slog.Logger, provider *metrics.Provider, cacheMetrics metrics.CacheMetrics) *Server {
	if cacheMetrics == nil {
		cacheMetrics = metrics.NewNoOpCacheMetrics()
	}
	s := &Server{
		cache:        NewCache(),
		logger:       logger,
		provider:     provider,
		cacheMetrics: cacheMetrics,
		// One password-bearing request per 100ms sustained, bursts of 5.
		// Blunts local brute-force password guessing against the cache.
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
	}
	s.server = &http.Server{
		Handler:      s.router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) router() http.Handler {
	router := gin.New()
	// Shrine paths arrive URL-escaped in a single segment; routing must use
	// the raw path so an escaped "/" inside :path is not split into extra
	// segments. Params are still unescaped before the handlers see them.
	router.UseRawPath = true
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(s.loggingMiddleware())
	if s.provider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(s.provider.MeterProvider(), metricsNamespace))
	}

	router.GET("/status", s.handleStatus)
	router.PUT("/passwords", s.handlePutPassword)
	router.DELETE("/passwords", s.handleClearPasswords)
	router.GET("/keys/:path/:key", s.rateLimited(s.handleGetKey))
	router.PUT("/keys/:path/:key", s.rateLimited(s.handlePutKey))
	if s.provider != nil {
		router.GET("/metrics", gin.WrapH(s.provider.Handler()))
	}
	return router
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("agent request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", requestid.Get(c)),
		)
	}
}

// rateLimited gates password-bearing endpoints with the shared limiter.
func (s *Server) rateLimited(next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		next(c)
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, true)
}

func (s *Server) handlePutPassword(c *gin.Context) {
	var req PutPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, agentError{Kind: "Agent", Reason: err.Error()})
		return
	}
	id, err := uuid.Parse(req.UUID)
	if err != nil {
		c.JSON(http.StatusBadRequest, agentError{Kind: "Agent", Reason: "invalid uuid"})
		return
	}
	s.cache.Put(id, req.Password)
	c.Status(http.StatusNoContent)
}

// handleClearPasswords drops every cached password, for `agent
// clear-passwords`.
func (s *Server) handleClearPasswords(c *gin.Context) {
	s.cache.Clear()
	c.Status(http.StatusNoContent)
}

// loadAndOpen loads the shrine at path and attempts to open it with the
// cached password for its UUID. Each call produces a caller-owned
// OpenShrine; callers are responsible for scrubbing it.
func (s *Server) loadAndOpen(ctx context.Context, path string) (*shrine.OpenShrine, *agentError) {
	closed, err := shrine.TryFromPath(path)
	if err != nil {
		var fnf *domain.ErrFileNotFound
		if errors.As(err, &fnf) {
			return nil, &agentError{Kind: "FileNotFound", Path: path}
		}
		return nil, &agentError{Kind: "Io", Path: path}
	}

	if closed.Encryption() == crypto.AlgorithmPlain {
		open, err := closed.Open(nil)
		if err != nil {
			return nil, &agentError{Kind: "Read", Path: path}
		}
		return open, nil
	}

	password, ok := s.cache.Get(closed.UUID())
	if !ok {
		s.cacheMetrics.RecordLookup(ctx, metrics.LookupMiss)
		return nil, &agentError{Kind: "Unauthorized", UUID: closed.UUID().String()}
	}

	open, err := closed.Open(&password)
	if err != nil {
		s.cacheMetrics.RecordLookup(ctx, metrics.LookupReject)
		return nil, &agentError{Kind: "Forbidden", UUID: closed.UUID().String()}
	}
	s.cacheMetrics.RecordLookup(ctx, metrics.LookupHit)
	return open, nil
}

// getKeyResult is the singleflight-shared outcome of one GET /keys lookup.
// It carries only immutable data (strings), so concurrent duplicate
// requests can safely share one instance.
type getKeyResult struct {
	status int
	aerr   *agentError
	resp   SecretResponse
}

func (s *Server) handleGetKey(c *gin.Context) {
	path := c.Param("path")
	key := c.Param("key")

	// Coalesce identical concurrent lookups so a burst of CLI invocations
	// against one shrine only pays the KDF cost once. The shared value is a
	// plain response struct, never the live shrine.
	v, _, _ := s.group.Do(path+"\x00"+key, func() (any, error) {
		open, aerr := s.loadAndOpen(c.Request.Context(), path)
		if aerr != nil {
			return &getKeyResult{status: statusFor(aerr.Kind), aerr: aerr}, nil
		}
		defer open.Scrub()

		secret, err := open.Get(key)
		if err != nil {
			return &getKeyResult{
				status: http.StatusNotFound,
				aerr:   &agentError{Kind: "KeyNotFound", File: path, Key: key},
			}, nil
		}
		return &getKeyResult{status: http.StatusOK, resp: secretToResponse(secret)}, nil
	})

	result := v.(*getKeyResult)
	if result.aerr != nil {
		c.JSON(result.status, *result.aerr)
		return
	}
	c.JSON(result.status, result.resp)
}

func (s *Server) handlePutKey(c *gin.Context) {
	path := c.Param("path")
	key := c.Param("key")

	var req PutKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, agentError{Kind: "Agent", Reason: err.Error()})
		return
	}
	if err := jellyvalidation.Validate(req.Secret, jellyvalidation.Required, appvalidation.Base64); err != nil {
		c.JSON(http.StatusBadRequest, agentError{Kind: "Agent", Reason: "invalid base64 secret"})
		return
	}

	open, aerr := s.loadAndOpen(c.Request.Context(), path)
	if aerr != nil {
		c.JSON(statusFor(aerr.Kind), *aerr)
		return
	}
	defer open.Scrub()

	value, err := domain.SecretBytesFromBase64(req.Secret)
	if err != nil {
		c.JSON(http.StatusBadRequest, agentError{Kind: "Agent", Reason: "invalid base64 secret"})
		return
	}
	mode := domain.ModeText
	if req.Mode == "binary" {
		mode = domain.ModeBinary
	}

	secret := domain.NewSecret(value, mode, authorship.Current(), time.Now().UTC())
	if err := open.Set(key, secret); err != nil {
		c.JSON(http.StatusBadRequest, agentError{Kind: "Agent", Reason: err.Error()})
		return
	}

	closed, err := open.Close()
	if err != nil {
		c.JSON(http.StatusInternalServerError, agentError{Kind: "Write", Path: path})
		return
	}
	if err := closed.WriteTo(path); err != nil {
		c.JSON(http.StatusInternalServerError, agentError{Kind: "Write", Path: path})
		return
	}
	c.Status(http.StatusNoContent)
}

// Listen binds the Unix socket at socketPath, removing any stale socket
// file first, and begins serving in the background. Call Shutdown to stop.
func (s *Server) Listen(socketPath string) error {
	_ = removeStaleSocket(socketPath)
	l, err := net.Listen("unix", socketPath)
	if err != nil {
		return err
	}
	s.listener = l
	go func() {
		if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("agent server stopped", slog.Any("error", err))
		}
	}()
	return nil
}

// Shutdown gracefully stops the server and scrubs every cached password.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.cache.Clear()
	return s.server.Shutdown(ctx)
}

// CacheLen reports the number of cached passwords.
func (s *Server) CacheLen() int {
	return s.cache.Len()
}
